package catalog

import (
	"testing"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func algorithmsForm() model.CourseForm {
	return model.CourseForm{
		Title:       "Algorithms",
		Description: "Sorting, searching and graphs",
		Instructor:  "Dr. Knuth",
		Semester:    "Fall 2026",
		CourseCode:  "CS201",
		Credits:     "3",
	}
}

func TestParseFormCoercesCredits(t *testing.T) {
	fields, err := ParseForm(algorithmsForm())
	require.NoError(t, err)
	assert.Equal(t, 3, fields.Credits)
	assert.Empty(t, fields.Prerequisites)
}

func TestParseFormTrimsInput(t *testing.T) {
	form := algorithmsForm()
	form.Title = "  Algorithms  "
	form.Credits = " 4 "

	fields, err := ParseForm(form)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", fields.Title)
	assert.Equal(t, 4, fields.Credits)
}

func TestParseFormRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.CourseForm)
		message string
	}{
		{"missing title", func(f *model.CourseForm) { f.Title = " " }, "title is required"},
		{"missing course code", func(f *model.CourseForm) { f.CourseCode = "" }, "course code is required"},
		{"missing credits", func(f *model.CourseForm) { f.Credits = "" }, "credits is required"},
		{"non numeric credits", func(f *model.CourseForm) { f.Credits = "three" }, `credits must be a whole number, got "three"`},
		{"fractional credits", func(f *model.CourseForm) { f.Credits = "3.5" }, `credits must be a whole number, got "3.5"`},
		{"zero credits", func(f *model.CourseForm) { f.Credits = "0" }, "credits must be greater than 0"},
		{"negative credits", func(f *model.CourseForm) { f.Credits = "-2" }, "credits must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := algorithmsForm()
			tt.mutate(&form)

			_, err := ParseForm(form)
			assert.True(t, apperrors.Is(err, apperrors.KindValidation))
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestFormFromCourseRoundTrip(t *testing.T) {
	course := model.Course{
		ID:            "c1",
		Title:         "Compilers",
		Description:   "Front to back",
		Instructor:    "Dr. Aho",
		Semester:      "Spring 2027",
		CourseCode:    "CS401",
		Credits:       4,
		Prerequisites: "CS201",
		EnrolledCount: 12,
	}

	fields, err := ParseForm(FormFromCourse(course))
	require.NoError(t, err)
	assert.Equal(t, course.Fields(), fields)
}
