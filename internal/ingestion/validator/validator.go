// Package validator checks add requests before they reach the library and
// reports every offending field at once.
package validator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
)

const (
	maxTitleLength = 1024
	maxListLength  = 64
	maxEntryLength = 256
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, field := range names {
		parts[i] = fmt.Sprintf("%s: %s", field, e.Fields[field])
	}
	return strings.Join(parts, "; ")
}

// ValidateAddRequest requires an absolute path with an extension and a
// non-blank title, and bounds the author and keyword lists.
func ValidateAddRequest(req *ingestion.AddRequest) error {
	errs := make(map[string]string)

	switch {
	case strings.TrimSpace(req.Path) == "":
		errs["path"] = "path is required"
	case !filepath.IsAbs(req.Path):
		errs["path"] = "path must be absolute"
	case filepath.Ext(req.Path) == "" || filepath.Ext(req.Path) == ".":
		errs["path"] = "file must have an extension"
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}

	if msg := checkList(req.Authors); msg != "" {
		errs["authors"] = msg
	}
	if msg := checkList(req.Keywords); msg != "" {
		errs["keywords"] = msg
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkList(entries []string) string {
	if len(entries) > maxListLength {
		return fmt.Sprintf("at most %d entries allowed", maxListLength)
	}
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			return "entries must not be blank"
		}
		if len(e) > maxEntryLength {
			return fmt.Sprintf("entries must be at most %d characters", maxEntryLength)
		}
	}
	return ""
}
