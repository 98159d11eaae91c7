package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
)

func TestValidateAddRequest_Valid(t *testing.T) {
	req := &ingestion.AddRequest{
		Path:     "/home/user/books/tapl.pdf",
		Title:    "Types and Programming Languages",
		Authors:  []string{"Benjamin C. Pierce"},
		Keywords: []string{"types"},
	}
	assert.NoError(t, ValidateAddRequest(req))
}

func TestValidateAddRequest_Fields(t *testing.T) {
	tests := []struct {
		name  string
		req   ingestion.AddRequest
		field string
	}{
		{"missing path", ingestion.AddRequest{Title: "t"}, "path"},
		{"relative path", ingestion.AddRequest{Path: "book.pdf", Title: "t"}, "path"},
		{"no extension", ingestion.AddRequest{Path: "/tmp/README", Title: "t"}, "path"},
		{"blank title", ingestion.AddRequest{Path: "/tmp/a.pdf", Title: "  "}, "title"},
		{"long title", ingestion.AddRequest{Path: "/tmp/a.pdf", Title: strings.Repeat("x", maxTitleLength+1)}, "title"},
		{"blank author", ingestion.AddRequest{Path: "/tmp/a.pdf", Title: "t", Authors: []string{""}}, "authors"},
		{"too many keywords", ingestion.AddRequest{Path: "/tmp/a.pdf", Title: "t", Keywords: make([]string, maxListLength+1)}, "keywords"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddRequest(&tt.req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "required", "path": "required"}}
	assert.Equal(t, "path: required; title: required", err.Error())
}
