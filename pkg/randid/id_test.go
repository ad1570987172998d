package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_Length(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 6, 32} {
		assert.Len(t, Generate(n), max(n, 0), "n=%d", n)
	}
}

func TestGenerate_Alphabet(t *testing.T) {
	id := Generate(2000)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected rune %q", r)
	}
	assert.NotContains(t, id, "0", "ambiguous characters are excluded")
	assert.NotContains(t, id, "l")
}

func TestGenerate_Spread(t *testing.T) {
	seen := map[string]struct{}{}
	for range 200 {
		seen[Generate(6)] = struct{}{}
	}
	assert.Len(t, seen, 200, "6 character ids should not collide in 200 draws")

	chars := map[rune]struct{}{}
	for _, r := range Generate(5000) {
		chars[r] = struct{}{}
	}
	assert.Len(t, chars, len(Alphabet))
}
