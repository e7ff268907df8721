// Package bitvec implements a fixed-width bit string with in-place XOR
// and popcount, backed by github.com/bits-and-blooms/bitset.
package bitvec

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// BitVec is a fixed-width bit string. The zero value is not usable;
// construct with Make or FromWords.
type BitVec struct {
	nbits uint
	bs    *bitset.BitSet
}

// Make returns a zeroed BitVec of n bits.
func Make(n uint) BitVec {
	return BitVec{nbits: n, bs: bitset.New(n)}
}

// NBits returns the vector's declared bit width.
func (v BitVec) NBits() uint {
	return v.nbits
}

// Test reports whether bit i is set.
func (v BitVec) Test(i uint) bool {
	return v.bs.Test(i)
}

// Set sets bit i.
func (v BitVec) Set(i uint) {
	v.bs.Set(i)
}

// XorWith XORs b into v in place. When v and b share a length this is a
// single word-parallel symmetric difference; otherwise only the first
// min(len, b.len) bits participate and the excess tail is left
// untouched, per the component's tolerance for mismatched lengths.
func (v *BitVec) XorWith(b BitVec) {
	if v.nbits == b.nbits {
		v.bs.InPlaceSymmetricDifference(b.bs)
		return
	}
	n := v.nbits
	if b.nbits < n {
		n = b.nbits
	}
	for i := uint(0); i < n; i++ {
		if b.Test(i) {
			v.bs.Flip(i)
		}
	}
}

// Popcnt returns the number of set bits. Unused high bits of the last
// word are always 0 by construction, so this needs no masking.
func (v BitVec) Popcnt() uint {
	return v.bs.Count()
}

// Equal reports whether v and b have the same length and bit pattern.
func (v BitVec) Equal(b BitVec) bool {
	if v.nbits != b.nbits {
		return false
	}
	return v.bs.Equal(b.bs)
}

// Words packs the vector into ceil(nbits/64) little-endian 64-bit words,
// the wire/commit representation used by serialize and commit.
func (v BitVec) Words() []uint64 {
	n := (v.nbits + 63) / 64
	out := make([]uint64, n)
	for i := uint(0); i < v.nbits; i++ {
		if v.bs.Test(i) {
			out[i/64] |= uint64(1) << (i % 64)
		}
	}
	return out
}

// FromWords reconstructs a BitVec of nbits from its little-endian word
// packing, the inverse of Words.
func FromWords(nbits uint, words []uint64) BitVec {
	v := Make(nbits)
	for i := uint(0); i < nbits; i++ {
		if words[i/64]>>(i%64)&1 != 0 {
			v.Set(i)
		}
	}
	return v
}

// Parity64 returns the parity (popcount mod 2) of a single 64-bit word,
// used by the LPN sampler to fold a masked secret row to one bit.
func Parity64(x uint64) int {
	return bits.OnesCount64(x) & 1
}
