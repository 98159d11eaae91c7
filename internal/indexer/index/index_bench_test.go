package index

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
)

var benchTopics = []string{"distributed", "search", "analytics", "compilers", "rust", "paxos", "databases", "graphs"}

func benchDoc(i int) *document.Document {
	return &document.Document{
		Title:     fmt.Sprintf("Notes on %s and %s", benchTopics[i%len(benchTopics)], benchTopics[(i+3)%len(benchTopics)]),
		Authors:   []string{fmt.Sprintf("Author %d", i%97)},
		Keywords:  []string{benchTopics[(i+1)%len(benchTopics)], benchTopics[(i+5)%len(benchTopics)]},
		Extension: "pdf",
	}
}

func benchIndex(n int) *MemoryIndex {
	m := NewMemoryIndex()
	for i := 0; i < n; i++ {
		m.AddDocument(document.IDFromUint64(uint64(i+1)), benchDoc(i))
	}
	return m
}

func BenchmarkMemoryIndexAdd(b *testing.B) {
	m := NewMemoryIndex()
	docs := make([]*document.Document, 1024)
	for i := range docs {
		docs[i] = benchDoc(i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.AddDocument(document.IDFromUint64(uint64(i+1)), docs[i%len(docs)])
	}
}

// BenchmarkMemoryIndexReplace measures re-inserting an existing id, which
// first purges the old postings.
func BenchmarkMemoryIndexReplace(b *testing.B) {
	m := benchIndex(1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.AddDocument(document.IDFromUint64(uint64(i%1000+1)), benchDoc(i))
	}
}

func BenchmarkMemoryIndexSearch(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			m := benchIndex(size)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.Search(benchTopics[i%len(benchTopics)], 5)
			}
		})
	}
}

func BenchmarkMemoryIndexSearchParallel(b *testing.B) {
	m := benchIndex(10000)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = m.Search(benchTopics[i%len(benchTopics)], 5)
			i++
		}
	})
}
