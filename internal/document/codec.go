package document

import (
	"encoding/binary"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
)

// FormatVersion is the first byte of every encoded document.
const FormatVersion byte = 1

// Encode serialises a document as: version byte, uvarint-prefixed title,
// uvarint count of authors followed by each uvarint-prefixed author, the same
// for keywords, uvarint-prefixed extension, then the raw 32 hash bytes.
func Encode(d *Document) []byte {
	size := 1 + binary.MaxVarintLen64*4 + len(d.Title) + len(d.Extension) + HashSize
	for _, a := range d.Authors {
		size += binary.MaxVarintLen64 + len(a)
	}
	for _, k := range d.Keywords {
		size += binary.MaxVarintLen64 + len(k)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, FormatVersion)
	buf = appendString(buf, d.Title)
	buf = appendList(buf, d.Authors)
	buf = appendList(buf, d.Keywords)
	buf = appendString(buf, d.Extension)
	buf = append(buf, d.Hash[:]...)
	return buf
}

// Decode parses bytes produced by Encode. Any truncation, unknown version or
// trailing garbage yields an error wrapping ErrDecode. Empty lists decode as
// empty, non-nil slices.
func Decode(data []byte) (Document, error) {
	var d Document
	r := reader{buf: data}

	version, err := r.byte()
	if err != nil {
		return d, err
	}
	if version != FormatVersion {
		return d, fmt.Errorf("%w: unknown document format version %d", apperrors.ErrDecode, version)
	}
	if d.Title, err = r.string(); err != nil {
		return d, err
	}
	if d.Authors, err = r.list(); err != nil {
		return d, err
	}
	if d.Keywords, err = r.list(); err != nil {
		return d, err
	}
	if d.Extension, err = r.string(); err != nil {
		return d, err
	}
	raw, err := r.take(HashSize)
	if err != nil {
		return d, err
	}
	copy(d.Hash[:], raw)
	if r.pos != len(r.buf) {
		return d, fmt.Errorf("%w: %d trailing bytes", apperrors.ErrDecode, len(r.buf)-r.pos)
	}
	return d, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendList(buf []byte, items []string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(items)))
	for _, item := range items {
		buf = appendString(buf, item)
	}
	return buf
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad length prefix at offset %d", apperrors.ErrDecode, r.pos)
	}
	r.pos += n
	return v, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.buf)-r.pos < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", apperrors.ErrDecode, n, r.pos, len(r.buf)-r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) string() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(r.buf)) {
		return "", fmt.Errorf("%w: string length %d exceeds record", apperrors.ErrDecode, n)
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) list() ([]string, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	// Every entry carries at least a one-byte length prefix.
	if n > uint64(len(r.buf)-r.pos) {
		return nil, fmt.Errorf("%w: list length %d exceeds record", apperrors.ErrDecode, n)
	}
	items := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}
