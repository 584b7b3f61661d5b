package catalog

import (
	"testing"

	"course-catalog-go/internal/model"
	"github.com/stretchr/testify/assert"
)

func titles(courses []model.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Title)
	}
	return out
}

func TestFilter(t *testing.T) {
	courses := []model.Course{
		{ID: "1", Title: "Algorithms I", Description: "Sorting and searching"},
		{ID: "2", Title: "Data Structures", Description: "Trees, heaps and hash tables"},
		{ID: "3", Title: "Compilers", Description: "Parsing with ALGOrithmic flair"},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "empty term keeps order", term: "", want: []string{"Algorithms I", "Data Structures", "Compilers"}},
		{name: "title match is case insensitive", term: "algo", want: []string{"Algorithms I", "Compilers"}},
		{name: "description match", term: "HEAPS", want: []string{"Data Structures"}},
		{name: "no match", term: "quantum", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Filter(courses, tt.term)))
		})
	}
}

func TestFilterSearchScenario(t *testing.T) {
	courses := []model.Course{
		{ID: "1", Title: "Algorithms I", Description: "Intro"},
		{ID: "2", Title: "Data Structures", Description: "Intro"},
	}

	assert.Equal(t, []string{"Algorithms I"}, titles(Filter(courses, "algo")))
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	courses := []model.Course{{ID: "1", Title: "Algorithms"}}

	filtered := Filter(courses, "")
	filtered[0].Title = "changed"

	assert.Equal(t, "Algorithms", courses[0].Title)
}

func TestFind(t *testing.T) {
	courses := []model.Course{{ID: "1", Title: "Algorithms"}, {ID: "2", Title: "Compilers"}}

	found, ok := Find(courses, "2")
	assert.True(t, ok)
	assert.Equal(t, "Compilers", found.Title)

	_, ok = Find(courses, "3")
	assert.False(t, ok)
}
