// Package ranker holds the TF-IDF scoring formulas and the bounded top-K
// list used to rank documents against a query.
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
)

type ScoredDoc struct {
	ID    document.ID `json:"id"`
	Score float64     `json:"score"`
}

// TermFrequency is the augmented frequency 0.5 + 0.5*count/maxCount. A
// document without any gram has maxCount zero and gets the 0.5 baseline.
func TermFrequency(count, maxCount uint32) float64 {
	if maxCount == 0 {
		return 0.5
	}
	return 0.5 + 0.5*(float64(count)/float64(maxCount))
}

// InverseDocumentFrequency is ln(totalDocs/docFreq). The second result is
// false when docFreq is zero; such grams occur nowhere in the corpus and
// must not contribute to any score.
func InverseDocumentFrequency(totalDocs int, docFreq uint32) (float64, bool) {
	if docFreq == 0 || totalDocs == 0 {
		return 0, false
	}
	return math.Log(float64(totalDocs) / float64(docFreq)), true
}

// TopK keeps the k highest scores seen so far in descending order. Among
// equal scores the one pushed first ranks first.
type TopK struct {
	k       int
	entries []ScoredDoc
}

// NewTopK panics when k < 1: asking for no results is a caller bug.
func NewTopK(k int) *TopK {
	if k < 1 {
		panic("ranker: top-k requires k >= 1")
	}
	return &TopK{
		k:       k,
		entries: make([]ScoredDoc, 0, k+1),
	}
}

func (t *TopK) Push(id document.ID, score float64) {
	pos := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Score < score
	})
	if pos >= t.k {
		return
	}
	t.entries = append(t.entries, ScoredDoc{})
	copy(t.entries[pos+1:], t.entries[pos:])
	t.entries[pos] = ScoredDoc{ID: id, Score: score}
	if len(t.entries) > t.k {
		t.entries = t.entries[:t.k]
	}
}

func (t *TopK) Len() int {
	return len(t.entries)
}

// Results returns a copy of the ranked entries.
func (t *TopK) Results() []ScoredDoc {
	out := make([]ScoredDoc, len(t.entries))
	copy(out, t.entries)
	return out
}
