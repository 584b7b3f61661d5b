package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutLicense(t *testing.T) {
	tel, err := New(Config{AppName: "course-catalog"})
	require.NoError(t, err)
	assert.False(t, tel.Enabled())

	tel.Shutdown(time.Second)
}

func TestRunPassesResultThrough(t *testing.T) {
	tel, err := New(Config{})
	require.NoError(t, err)

	called := false
	err = tel.Run(context.Background(), "list", func(ctx context.Context) error {
		called = true
		assert.NotNil(t, ctx)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	err = tel.Run(context.Background(), "delete", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestHTTPClientWithoutTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tel, err := New(Config{})
	require.NoError(t, err)

	resp, err := tel.HTTPClient().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
