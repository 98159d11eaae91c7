package document

import (
	"crypto/sha256"
	"encoding/json"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title:     "Types and Programming Languages",
		Authors:   []string{"Benjamin C. Pierce"},
		Keywords:  []string{"type theory", "lambda calculus"},
		Extension: "pdf",
		Hash:      Hash(sha256.Sum256([]byte("tapl"))),
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := sampleDocument()
	got, err := Decode(Encode(&doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestEncodeDecode_EmptyLists(t *testing.T) {
	doc := Document{Title: "Untitled", Extension: "djvu"}
	got, err := Decode(Encode(&doc))
	require.NoError(t, err)
	assert.NotNil(t, got.Authors)
	assert.NotNil(t, got.Keywords)
	assert.True(t, doc.Equal(&got))

	doc.Normalize()
	assert.Equal(t, doc, got)
}

func TestEncodeDecode_LongLists(t *testing.T) {
	doc := sampleDocument()
	doc.Keywords = make([]string, 70000)
	for i := range doc.Keywords {
		doc.Keywords[i] = "k"
	}
	doc.Authors = []string{}
	got, err := Decode(Encode(&doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestNormalize_KeepsValues(t *testing.T) {
	doc := sampleDocument()
	doc.Normalize()
	assert.Equal(t, sampleDocument(), doc)
}

func TestDecode_Corruption(t *testing.T) {
	doc := sampleDocument()
	encoded := Encode(&doc)

	cases := map[string][]byte{
		"empty":         {},
		"bad version":   append([]byte{9}, encoded[1:]...),
		"truncated":     encoded[:len(encoded)-5],
		"trailing":      append(append([]byte{}, encoded...), 0x00),
		"huge list len": {FormatVersion, 0, 0xff, 0xff, 0xff, 0xff, 0x0f},
		"list too long": {FormatVersion, 0, 3, 0, 0},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrDecode)
		})
	}
}

func TestID_HexRoundTripAndOrder(t *testing.T) {
	id := IDFromUint64(258)
	assert.Equal(t, "0000000000000102", id.String())

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Equal(t, uint64(258), parsed.Uint64())

	assert.Equal(t, -1, IDFromUint64(255).Compare(IDFromUint64(256)))
	assert.Equal(t, 0, id.Compare(parsed))

	_, err = ParseID("0102")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = ParseID("zz")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIDFromBytes_RejectsWrongLength(t *testing.T) {
	_, err := IDFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, apperrors.ErrDecode)
}

func TestHash_JSON(t *testing.T) {
	doc := sampleDocument()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Hash":"`+doc.Hash.String()+`"`)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, doc.Equal(&back))

	err = json.Unmarshal([]byte(`{"Hash":"abcd"}`), &back)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "length 32"))
}

func TestFilename(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, doc.Hash.String()+".pdf", doc.Filename())
	doc.Extension = ""
	assert.Equal(t, doc.Hash.String(), doc.Filename())
}

func TestID_JSONUsesHex(t *testing.T) {
	data, err := json.Marshal(struct {
		IDs []ID `json:"ids"`
	}{IDs: []ID{IDFromUint64(1), IDFromUint64(255)}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":["0000000000000001","00000000000000ff"]}`, string(data))

	var back struct {
		IDs []ID `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, uint64(255), back.IDs[1].Uint64())

	assert.Error(t, json.Unmarshal([]byte(`{"ids":["xyz"]}`), &back))
}
