// Package tokenizer turns document fields and queries into fixed-width byte
// grams. Each field is ASCII-lowercased and cut into overlapping windows of
// GramSize bytes with stride one; windows never span two fields.
package tokenizer

// GramSize is the width of every gram in bytes.
const GramSize = 3

// Gram is one window of GramSize raw bytes.
type Gram [GramSize]byte

func (g Gram) String() string {
	return string(g[:])
}

// Each calls fn for every gram of text in order of appearance. Text shorter
// than GramSize yields nothing.
func Each(text string, fn func(Gram)) {
	for pos := 0; pos+GramSize <= len(text); pos++ {
		var g Gram
		for i := 0; i < GramSize; i++ {
			g[i] = lower(text[pos+i])
		}
		fn(g)
	}
}

// Fields counts the grams of several independent fields.
func Fields(fields ...[]string) map[Gram]uint32 {
	counts := make(map[Gram]uint32)
	add := func(g Gram) {
		counts[g]++
	}
	for _, group := range fields {
		for _, field := range group {
			Each(field, add)
		}
	}
	return counts
}

// lower folds ASCII letters only; other bytes, including every byte of a
// multi-byte UTF-8 sequence, pass through unchanged.
func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
