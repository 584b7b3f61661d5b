package catalog

import (
	"strings"

	"course-catalog-go/internal/model"
)

// Filter returns the courses whose title or description contains term,
// ignoring case, in their original order. An empty term keeps everything.
func Filter(courses []model.Course, term string) []model.Course {
	if term == "" {
		return append([]model.Course(nil), courses...)
	}

	needle := strings.ToLower(term)
	matched := make([]model.Course, 0, len(courses))
	for _, course := range courses {
		if strings.Contains(strings.ToLower(course.Title), needle) ||
			strings.Contains(strings.ToLower(course.Description), needle) {
			matched = append(matched, course)
		}
	}

	return matched
}

// Find returns the course with the given id.
func Find(courses []model.Course, id string) (model.Course, bool) {
	for _, course := range courses {
		if course.ID == id {
			return course, true
		}
	}
	return model.Course{}, false
}
