// Package document defines the values kept in the library: the Document
// metadata record, its store-assigned ID and its content Hash.
package document

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
)

const (
	IDSize   = 8
	HashSize = 32
)

// ID identifies a stored document. It is a big-endian counter value, so byte
// order and numeric order agree.
type ID [IDSize]byte

func IDFromUint64(n uint64) ID {
	var id ID
	binary.BigEndian.PutUint64(id[:], n)
	return id
}

// IDFromBytes copies a raw store key into an ID.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDSize {
		return id, fmt.Errorf("%w: id has %d bytes, want %d", apperrors.ErrDecode, len(b), IDSize)
	}
	copy(id[:], b)
	return id, nil
}

// ParseID decodes the 16-character hex form produced by String.
func ParseID(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: id %q: %v", apperrors.ErrInvalidInput, s, err)
	}
	if len(b) != IDSize {
		return id, fmt.Errorf("%w: id %q has %d bytes, want %d", apperrors.ErrInvalidInput, s, len(b), IDSize)
	}
	copy(id[:], b)
	return id, nil
}

func (id ID) Uint64() uint64 {
	return binary.BigEndian.Uint64(id[:])
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) Compare(other ID) int {
	switch a, b := id.Uint64(), other.Uint64(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Hash is the digest of a document's file content and the deduplication key.
type Hash [HashSize]byte

func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: hash has %d bytes, want %d", apperrors.ErrDecode, len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: hash %q: %v", apperrors.ErrInvalidInput, s, err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: hash of document does not have length %d", apperrors.ErrInvalidInput, HashSize)
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Document is the metadata record of one file in the library. Field names
// double as the backup JSON keys.
type Document struct {
	Title     string
	Authors   []string
	Keywords  []string
	Extension string
	Hash      Hash
}

// Filename is the name the document's file has inside the library directory.
func (d *Document) Filename() string {
	if d.Extension == "" {
		return d.Hash.String()
	}
	return d.Hash.String() + "." + d.Extension
}

// Normalize replaces nil Authors and Keywords with empty slices, the form a
// stored document is read back in.
func (d *Document) Normalize() {
	if d.Authors == nil {
		d.Authors = []string{}
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
}

func (d *Document) Equal(other *Document) bool {
	return d.Title == other.Title &&
		slices.Equal(d.Authors, other.Authors) &&
		slices.Equal(d.Keywords, other.Keywords) &&
		d.Extension == other.Extension &&
		d.Hash == other.Hash
}
