package model

type Course struct {
	ID            string `json:"_id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	Description   string `json:"description" yaml:"description"`
	Instructor    string `json:"instructor" yaml:"instructor"`
	Semester      string `json:"semester" yaml:"semester"`
	CourseCode    string `json:"courseCode" yaml:"courseCode"`
	Credits       int    `json:"credits" yaml:"credits"`
	Prerequisites string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	EnrolledCount int    `json:"enrolledCount" yaml:"enrolledCount"`
	IsEnrolled    bool   `json:"isEnrolled" yaml:"isEnrolled"`
}

// CourseFields is the writable part of a course, sent on create and as the
// whole-record replacement on edit.
type CourseFields struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description" validate:"required"`
	Instructor    string `json:"instructor" validate:"required"`
	Semester      string `json:"semester" validate:"required"`
	CourseCode    string `json:"courseCode" validate:"required"`
	Credits       int    `json:"credits" validate:"gt=0"`
	Prerequisites string `json:"prerequisites"`
}

// CourseForm holds course fields as typed by the user, before coercion.
type CourseForm struct {
	Title         string `validate:"required"`
	Description   string `validate:"required"`
	Instructor    string `validate:"required"`
	Semester      string `validate:"required"`
	CourseCode    string `validate:"required"`
	Credits       string `validate:"required"`
	Prerequisites string
}

func (c Course) Fields() CourseFields {
	return CourseFields{
		Title:         c.Title,
		Description:   c.Description,
		Instructor:    c.Instructor,
		Semester:      c.Semester,
		CourseCode:    c.CourseCode,
		Credits:       c.Credits,
		Prerequisites: c.Prerequisites,
	}
}
