package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
)

func ids(results []ScoredDoc) []uint64 {
	out := make([]uint64, len(results))
	for i, r := range results {
		out[i] = r.ID.Uint64()
	}
	return out
}

func TestTopK_KeepsHighestDescending(t *testing.T) {
	top := NewTopK(3)
	scores := []float64{0.5, 2.0, 1.0, 3.0, 0.1, 2.5}
	for i, s := range scores {
		top.Push(document.IDFromUint64(uint64(i+1)), s)
	}

	results := top.Results()
	assert.Equal(t, []uint64{4, 6, 2}, ids(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestTopK_TiesKeepInsertionOrder(t *testing.T) {
	top := NewTopK(3)
	for i := 1; i <= 5; i++ {
		top.Push(document.IDFromUint64(uint64(i)), 1.0)
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids(top.Results()))
}

func TestTopK_FewerThanK(t *testing.T) {
	top := NewTopK(10)
	top.Push(document.IDFromUint64(1), 0)
	top.Push(document.IDFromUint64(2), 0)
	assert.Equal(t, 2, top.Len())
}

func TestNewTopK_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { NewTopK(0) })
}

func TestFormulas(t *testing.T) {
	assert.Equal(t, 1.0, TermFrequency(4, 4))
	assert.Equal(t, 0.5, TermFrequency(0, 4))
	assert.Equal(t, 0.5, TermFrequency(0, 0))

	idf, ok := InverseDocumentFrequency(4, 1)
	assert.True(t, ok)
	assert.InDelta(t, math.Log(4), idf, 1e-12)

	_, ok = InverseDocumentFrequency(4, 0)
	assert.False(t, ok)
}
