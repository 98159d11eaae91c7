package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("document 00000001: %w", ErrNotFound), http.StatusNotFound},
		{"duplicate", fmt.Errorf("insert: %w", ErrDuplicateContent), http.StatusConflict},
		{"invalid", ErrInvalidInput, http.StatusBadRequest},
		{"decode", fmt.Errorf("get: %w", ErrDecode), http.StatusInternalServerError},
		{"io", ErrIO, http.StatusInternalServerError},
		{"app error wins", New(ErrNotFound, http.StatusTeapot, "odd"), http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := Newf(ErrDuplicateContent, http.StatusConflict, "hash %s", "ab12")
	assert.ErrorIs(t, err, ErrDuplicateContent)
	assert.Equal(t, "duplicate content: hash ab12", err.Error())
}

func TestWrap(t *testing.T) {
	notFound := Wrap(fmt.Errorf("document 0000000000000001: %w", ErrNotFound), "lookup failed")
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
	assert.Equal(t, "document 0000000000000001: not found", notFound.Message)
	assert.ErrorIs(t, notFound, ErrNotFound)

	storage := Wrap(fmt.Errorf("reading key: %w: disk gone", ErrIO), "lookup failed")
	assert.Equal(t, http.StatusInternalServerError, storage.StatusCode)
	assert.Equal(t, "lookup failed", storage.Message)
	assert.ErrorIs(t, storage, ErrIO)

	app := New(ErrUnavailable, http.StatusServiceUnavailable, "caching is disabled")
	assert.Same(t, app, Wrap(fmt.Errorf("cache: %w", app), "ignored"))
}
