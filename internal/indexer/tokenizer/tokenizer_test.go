package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func grams(text string) []string {
	var out []string
	Each(text, func(g Gram) {
		out = append(out, g.String())
	})
	return out
}

func TestEach_SlidingLowercase(t *testing.T) {
	assert.Equal(t, []string{"rus", "ust"}, grams("RuSt"))
	assert.Equal(t, []string{"the", "he ", "e b", " bo", "boo", "ook"}, grams("The Book"))
}

func TestEach_ShortInput(t *testing.T) {
	assert.Empty(t, grams(""))
	assert.Empty(t, grams("ab"))
	assert.Len(t, grams("abc"), 1)
}

func TestEach_NonASCIIBytesPassThrough(t *testing.T) {
	got := grams("Ñu")
	// "Ñ" is two bytes, so "Ñu" is exactly one window.
	assert.Equal(t, []string{"Ñu"}, got)
}

func TestFields_NoCrossFieldWindows(t *testing.T) {
	counts := Fields([]string{"ab"}, []string{"cd"})
	assert.Empty(t, counts, "windows must not join \"ab\" and \"cd\"")

	counts = Fields([]string{"aaaa"}, []string{"AAA", "bbb"})
	assert.Equal(t, uint32(3), counts[Gram{'a', 'a', 'a'}])
	assert.Equal(t, uint32(1), counts[Gram{'b', 'b', 'b'}])
	assert.Len(t, counts, 2)
}
