// Package randid generates short random identifiers that are easy to read
// back and type.
package randid

import (
	"crypto/rand"
)

// Alphabet omits 0, 1, i, l and o, which are easily confused when an id is
// read off a screen or printout.
const Alphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// rejection bound keeps the modulo unbiased
const maxByte = 256 - 256%len(Alphabet)

// Generate returns a random id of length n drawn from Alphabet.
func Generate(n int) string {
	if n <= 0 {
		return ""
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		// crypto/rand.Read never returns an error on supported platforms
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
