package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"course-catalog-go/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  apperrors.Validation("passwords do not match"),
			want: "Please check your input: passwords do not match",
		},
		{
			name: "auth from status",
			err:  apperrors.FromStatus(http.StatusUnauthorized, "Invalid email or password"),
			want: "Authentication failed: Invalid email or password",
		},
		{
			name: "wrapped not found",
			err:  fmt.Errorf("deleting course: %w", apperrors.FromStatus(http.StatusNotFound, "Course not found")),
			want: "Not found: Course not found",
		},
		{
			name: "conflict",
			err:  apperrors.FromStatus(http.StatusConflict, "Already enrolled in this course"),
			want: "Could not complete the request: Already enrolled in this course",
		},
		{
			name: "server generic",
			err:  apperrors.FromStatus(http.StatusInternalServerError, ""),
			want: "The course service reported an error: request failed with status 500",
		},
		{
			name: "transport with cause",
			err:  apperrors.Transport("could not reach the course service", errors.New("connection refused")),
			want: "Network problem: could not reach the course service: connection refused",
		},
		{
			name: "untyped",
			err:  errors.New("disk full"),
			want: "Something went wrong: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestNotifierWritesLines(t *testing.T) {
	var out bytes.Buffer
	n := NewNotifier(&out)

	n.Success("Enrolled in %s", "Algorithms")
	n.Error(apperrors.Validation("title is required"))
	n.Error(nil)

	assert.Contains(t, out.String(), "Enrolled in Algorithms")
	assert.Contains(t, out.String(), "Please check your input: title is required")
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")))
}
