// Package toeplitz implements the Toeplitz extractor: a deterministic
// compression of a bit string to a 127-bit field element, used by the
// LPN-based PRF to turn noisy parity samples into a mask.
package toeplitz

import "math/bits"

// wordAt returns bit-window [pos, pos+64) of the logical bit string
// formed by the words slice (word i holds bits [64i, 64i+64)), as a
// single 64-bit word. Bits beyond the end of words read as 0.
func wordAt(words []uint64, pos int) uint64 {
	wi := pos / 64
	sh := uint(pos % 64)
	var lo, hi uint64
	if wi < len(words) {
		lo = words[wi]
	}
	if sh == 0 {
		return lo
	}
	if wi+1 < len(words) {
		hi = words[wi+1]
	}
	return (lo >> sh) | (hi << (64 - sh))
}

// dotWords computes the bitwise inner product mod 2 of two equal-length
// word slices (and-then-popcount-then-parity).
func dotWords(a, b []uint64) int {
	parity := 0
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		parity ^= bits.OnesCount64(a[i]&b[i]) & 1
	}
	return parity
}

// Toep127 computes a 127-bit output (loOut, hiOut) whose bit k equals
// the inner product of top[k : k+lpnT) with y (both given as packed
// word slices), for k in [0, 127). top must therefore carry at least
// lpnT+127 bits. hiOut's bit 63 is always 0 (only 127 output bits are
// produced, matching Fp's canonical 127-bit range).
func Toep127(top []uint64, lpnT int, y []uint64) (loOut, hiOut uint64) {
	yWords := (lpnT + 63) / 64
	yv := y
	if len(yv) > yWords {
		yv = yv[:yWords]
	}

	for k := 0; k < 127; k++ {
		// window [k, k+lpnT) of top, packed into word-aligned slices so
		// dotWords can AND+popcount it against y directly.
		nWords := yWords
		window := make([]uint64, nWords)
		for i := 0; i < nWords; i++ {
			window[i] = wordAt(top, k+64*i)
		}
		// mask off any bits beyond lpnT in the last window word so they
		// don't pollute the parity of a y whose own tail is zero-padded.
		if rem := lpnT % 64; rem != 0 && nWords > 0 {
			window[nWords-1] &= (uint64(1) << uint(rem)) - 1
		}

		bit := uint64(dotWords(window, yv) & 1)
		if k < 64 {
			loOut |= bit << uint(k)
		} else {
			hiOut |= bit << uint(k-64)
		}
	}
	return
}
