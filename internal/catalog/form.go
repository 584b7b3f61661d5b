package catalog

import (
	"errors"
	"strconv"
	"strings"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseForm validates a course form and coerces credits to an integer.
func ParseForm(form model.CourseForm) (model.CourseFields, error) {
	form = trimForm(form)
	if err := validate.Struct(form); err != nil {
		return model.CourseFields{}, validationError(err)
	}

	credits, err := strconv.Atoi(form.Credits)
	if err != nil {
		return model.CourseFields{}, apperrors.Validation("credits must be a whole number, got %q", form.Credits)
	}

	fields := model.CourseFields{
		Title:         form.Title,
		Description:   form.Description,
		Instructor:    form.Instructor,
		Semester:      form.Semester,
		CourseCode:    form.CourseCode,
		Credits:       credits,
		Prerequisites: form.Prerequisites,
	}
	if err := validate.Struct(fields); err != nil {
		return model.CourseFields{}, validationError(err)
	}

	return fields, nil
}

// FormFromCourse prefills an edit form with a course's current values.
func FormFromCourse(course model.Course) model.CourseForm {
	return model.CourseForm{
		Title:         course.Title,
		Description:   course.Description,
		Instructor:    course.Instructor,
		Semester:      course.Semester,
		CourseCode:    course.CourseCode,
		Credits:       strconv.Itoa(course.Credits),
		Prerequisites: course.Prerequisites,
	}
}

func trimForm(form model.CourseForm) model.CourseForm {
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.Instructor = strings.TrimSpace(form.Instructor)
	form.Semester = strings.TrimSpace(form.Semester)
	form.CourseCode = strings.TrimSpace(form.CourseCode)
	form.Credits = strings.TrimSpace(form.Credits)
	form.Prerequisites = strings.TrimSpace(form.Prerequisites)
	return form
}

var fieldLabels = map[string]string{
	"Title":       "title",
	"Description": "description",
	"Instructor":  "instructor",
	"Semester":    "semester",
	"CourseCode":  "course code",
	"Credits":     "credits",
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("%v", err)
	}

	first := fieldErrs[0]
	label, ok := fieldLabels[first.Field()]
	if !ok {
		label = strings.ToLower(first.Field())
	}

	switch first.Tag() {
	case "required":
		return apperrors.Validation("%s is required", label)
	case "gt":
		return apperrors.Validation("%s must be greater than %s", label, first.Param())
	default:
		return apperrors.Validation("%s is invalid", label)
	}
}
