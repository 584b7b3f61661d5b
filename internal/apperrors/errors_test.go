package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusTeapot, KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "boom")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, "boom", err.Error())
		})
	}
}

func TestFromStatusGenericMessage(t *testing.T) {
	assert.Equal(t, "request failed with status 503", FromStatus(http.StatusServiceUnavailable, "").Error())
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("listing courses: %w", Transport("could not reach the course service", cause))

	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, Is(err, KindTransport))
	assert.False(t, Is(err, KindServer))
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
}

func TestKindOfUntypedError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestErrorFallsBackToSentinelText(t *testing.T) {
	assert.Equal(t, "resource not found", (&Error{Kind: KindNotFound}).Error())
	assert.Equal(t, "unknown error", (&Error{}).Error())
}
