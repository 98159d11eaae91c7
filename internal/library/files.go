package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
)

// Metadata is what a user supplies when adding a file; the extension and
// hash are derived from the file itself.
type Metadata struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Keywords []string `json:"keywords"`
}

// HashFile returns the 256-bit BLAKE3 digest of the file at path.
func HashFile(path string) (document.Hash, error) {
	var h document.Hash
	f, err := os.Open(path)
	if err != nil {
		return h, fmt.Errorf("opening %s: %w: %w", path, apperrors.ErrIO, err)
	}
	defer f.Close()
	digest := blake3.New(document.HashSize, nil)
	if _, err := io.Copy(digest, f); err != nil {
		return h, fmt.Errorf("hashing %s: %w: %w", path, apperrors.ErrIO, err)
	}
	copy(h[:], digest.Sum(nil))
	return h, nil
}

// AddFile hashes the file at path, inserts its document and copies the file
// into the library directory as hex(hash).extension. If the copy fails the
// insert is undone.
func (l *Library) AddFile(path string, meta Metadata) (document.ID, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return document.ID{}, fmt.Errorf("%w: file %s has no extension", apperrors.ErrInvalidInput, path)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return document.ID{}, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	hash, err := HashFile(path)
	if err != nil {
		return document.ID{}, err
	}
	doc := document.Document{
		Title:     meta.Title,
		Authors:   meta.Authors,
		Keywords:  meta.Keywords,
		Extension: ext,
		Hash:      hash,
	}

	l.logger.Info("adding document", "path", path, "hash", hash.String())

	l.mu.Lock()
	id, err := l.insertLocked(&doc)
	if err != nil {
		l.mu.Unlock()
		return id, err
	}
	dest := filepath.Join(l.basePath, doc.Filename())
	if err := copyFile(path, dest); err != nil {
		_, _, rmErr := l.removeLocked(id)
		l.mu.Unlock()
		return document.ID{}, errors.Join(fmt.Errorf("copying %s into library: %w", path, err), rmErr)
	}
	l.mu.Unlock()

	l.notifyInserted(id, doc)
	return id, nil
}

// Import inserts docs one by one, the way a backup is restored. Documents
// whose hash is already stored are skipped; any other failure stops the
// import. It returns how many documents were inserted and skipped.
func (l *Library) Import(docs []document.Document) (inserted, skipped int, err error) {
	for i := range docs {
		_, err := l.Insert(&docs[i])
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, apperrors.ErrDuplicateContent):
			skipped++
			l.logger.Warn("skipping duplicate document", "title", docs[i].Title, "hash", docs[i].Hash.String())
		default:
			return inserted, skipped, fmt.Errorf("importing document %d of %d: %w", i+1, len(docs), err)
		}
	}
	return inserted, skipped, nil
}

// copyFile writes src to a temporary file next to dst and renames it into
// place once synced.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o664)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	return nil
}
