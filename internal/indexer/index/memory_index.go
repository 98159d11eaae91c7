// Package index is the in-memory n-gram index. It is derived entirely from
// the store and rebuilt at startup; nothing here is persisted.
package index

import (
	"fmt"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/ranker"
)

// MemoryIndex keeps three views over the indexed documents:
// gram -> document -> occurrences, gram -> number of documents containing it,
// and document -> highest occurrence count of any of its grams.
//
// MemoryIndex does no locking; callers serialise writers against readers.
type MemoryIndex struct {
	gramCounts map[tokenizer.Gram]map[document.ID]uint32
	docCounts  map[tokenizer.Gram]uint32
	maxCounts  map[document.ID]uint32
	docGrams   map[document.ID][]tokenizer.Gram
	ids        []document.ID
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		gramCounts: make(map[tokenizer.Gram]map[document.ID]uint32),
		docCounts:  make(map[tokenizer.Gram]uint32),
		maxCounts:  make(map[document.ID]uint32),
		docGrams:   make(map[document.ID][]tokenizer.Gram),
	}
}

// AddDocument indexes the title, authors and keywords of doc under id. An id
// that is already indexed is replaced rather than counted twice.
func (m *MemoryIndex) AddDocument(id document.ID, doc *document.Document) {
	if _, exists := m.maxCounts[id]; exists {
		m.RemoveDocument(id)
	}

	counts := tokenizer.Fields([]string{doc.Title}, doc.Authors, doc.Keywords)
	grams := make([]tokenizer.Gram, 0, len(counts))
	var maxCount uint32
	for gram, count := range counts {
		perDoc, ok := m.gramCounts[gram]
		if !ok {
			perDoc = make(map[document.ID]uint32)
			m.gramCounts[gram] = perDoc
		}
		perDoc[id] = count
		m.docCounts[gram]++
		grams = append(grams, gram)
		if count > maxCount {
			maxCount = count
		}
	}

	m.maxCounts[id] = maxCount
	m.docGrams[id] = grams
	pos, _ := slices.BinarySearchFunc(m.ids, id, document.ID.Compare)
	m.ids = slices.Insert(m.ids, pos, id)
}

// RemoveDocument purges id from all three views. Removing an unknown id is a
// no-op.
func (m *MemoryIndex) RemoveDocument(id document.ID) {
	if _, exists := m.maxCounts[id]; !exists {
		return
	}
	for _, gram := range m.docGrams[id] {
		if perDoc, ok := m.gramCounts[gram]; ok {
			delete(perDoc, id)
			if len(perDoc) == 0 {
				delete(m.gramCounts, gram)
			}
		}
		if m.docCounts[gram] <= 1 {
			delete(m.docCounts, gram)
		} else {
			m.docCounts[gram]--
		}
	}
	delete(m.docGrams, id)
	delete(m.maxCounts, id)
	if pos, found := slices.BinarySearchFunc(m.ids, id, document.ID.Compare); found {
		m.ids = slices.Delete(m.ids, pos, pos+1)
	}
}

// Search scores every indexed document against query and returns at most k
// of them by descending score, ties broken by ascending id. Query grams that
// no document contains are ignored. k < 1 is a programming error and panics.
func (m *MemoryIndex) Search(query string, k int) []ranker.ScoredDoc {
	if k < 1 {
		panic(fmt.Sprintf("index: search requires k >= 1, got %d", k))
	}

	type weightedGram struct {
		perDoc map[document.ID]uint32
		idf    float64
	}
	total := len(m.ids)
	var weighted []weightedGram
	tokenizer.Each(query, func(g tokenizer.Gram) {
		idf, ok := ranker.InverseDocumentFrequency(total, m.docCounts[g])
		if !ok {
			return
		}
		weighted = append(weighted, weightedGram{perDoc: m.gramCounts[g], idf: idf})
	})

	top := ranker.NewTopK(k)
	for _, id := range m.ids {
		maxCount := m.maxCounts[id]
		var score float64
		for _, w := range weighted {
			score += ranker.TermFrequency(w.perDoc[id], maxCount) * w.idf
		}
		top.Push(id, score)
	}
	return top.Results()
}

// gramCount returns how many times gram occurs in the document id.
func (m *MemoryIndex) gramCount(gram tokenizer.Gram, id document.ID) uint32 {
	return m.gramCounts[gram][id]
}

// docFrequency returns how many indexed documents contain gram.
func (m *MemoryIndex) docFrequency(gram tokenizer.Gram) uint32 {
	return m.docCounts[gram]
}

// maxCount returns the highest gram count of id and whether id is indexed.
func (m *MemoryIndex) maxCount(id document.ID) (uint32, bool) {
	c, ok := m.maxCounts[id]
	return c, ok
}

func (m *MemoryIndex) DocCount() int {
	return len(m.ids)
}

// Grams returns the number of distinct grams in the index.
func (m *MemoryIndex) Grams() int {
	return len(m.docCounts)
}
