// Package backup exports and restores the metadata of every document in the
// library. A backup holds records only, never file contents: restoring one
// into an empty library makes search work again but opening a document still
// needs its file under the library directory.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
)

// Backup is the on-disk layout, {"Docs": [...]}, with hashes in hex.
type Backup struct {
	Docs []document.Document
}

// Target is somewhere a backup can be written to and read back from.
type Target interface {
	Save(ctx context.Context, docs []document.Document) error
	Load(ctx context.Context) ([]document.Document, error)
}

// File keeps a backup as a JSON document at Path.
type File struct {
	Path string
}

func (f File) Save(_ context.Context, docs []document.Document) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("%w: creating backup in %s: %v", apperrors.ErrIO, dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, docs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: writing backup: %v", apperrors.ErrIO, err)
	}
	if err := os.Chmod(tmp.Name(), 0o664); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("%w: moving backup to %s: %v", apperrors.ErrIO, f.Path, err)
	}
	return nil
}

func (f File) Load(_ context.Context) ([]document.Document, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: backup %s", apperrors.ErrNotFound, f.Path)
		}
		return nil, fmt.Errorf("%w: opening backup: %v", apperrors.ErrIO, err)
	}
	defer file.Close()
	return Decode(file)
}

func Encode(w io.Writer, docs []document.Document) error {
	if docs == nil {
		docs = []document.Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Backup{Docs: docs}); err != nil {
		return fmt.Errorf("%w: encoding backup: %v", apperrors.ErrIO, err)
	}
	return nil
}

func Decode(r io.Reader) ([]document.Document, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decoding backup: %v", apperrors.ErrDecode, err)
	}
	return b.Docs, nil
}
