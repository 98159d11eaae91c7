package tokenizer

import (
	"strings"
	"testing"
)

var benchTexts = map[string]string{
	"title":    "The Rust Programming Language",
	"document": "Paxos Made Simple Leslie Lamport distributed consensus pdf",
	"long":     strings.Repeat("Information retrieval systems form the backbone of search. ", 40),
}

func BenchmarkEach(b *testing.B) {
	for name, text := range benchTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			n := 0
			count := func(Gram) { n++ }
			for i := 0; i < b.N; i++ {
				Each(text, count)
			}
			b.ReportMetric(float64(n)/float64(b.N), "grams/op")
		})
	}
}

func BenchmarkFields(b *testing.B) {
	title := []string{benchTexts["title"]}
	authors := []string{"Steve Klabnik", "Carol Nichols"}
	keywords := []string{"rust", "systems", "programming"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Fields(title, authors, keywords, []string{"pdf"})
	}
}
