// Package field implements arithmetic in GF(p), p = 2^127 - 1.
//
// An element is a pair of machine words (Lo, Hi) representing the value
// Lo + Hi*2^64, always held canonical: Hi < 2^63 and (Hi, Lo) is never the
// representation (2^63-1, 2^64-1), the unique encoding of the zero class
// that the reducer folds back to (0, 0).
package field

import "math/bits"

// Mask63 isolates the low 63 bits of a word; Hi never carries bit 63.
const Mask63 = uint64(0x7FFFFFFFFFFFFFFF)

// Fp is a field element in canonical form.
type Fp struct {
	Lo uint64
	Hi uint64
}

// Zero and One are the additive and multiplicative identities.
var (
	Zero = Fp{0, 0}
	One  = Fp{1, 0}
)

// FromU64 lifts a machine word into Fp.
func FromU64(x uint64) Fp {
	return Fp{Lo: x, Hi: 0}
}

// addMany sums a sequence of words mod 2^64 and returns the number of
// 2^64 wraparounds as carry. Each step's individual carry-out is 0 or 1,
// so the running total correctly counts multiples of 2^64 in the sum.
func addMany(words ...uint64) (sum, carry uint64) {
	for _, w := range words {
		var c uint64
		sum, c = bits.Add64(sum, w, 0)
		carry += c
	}
	return
}

// FromWords canonicalises an arbitrary 128-bit word pair into [0, p) by
// folding the bit at position 127 back in as +1 (since 2^127 ≡ 1 mod p),
// then performing one conditional subtraction of p.
func FromWords(lo, hi uint64) Fp {
	extra := hi >> 63
	hi &= Mask63

	newLo, c := bits.Add64(lo, extra, 0)
	hi += c

	lo2 := newLo - ^uint64(0)
	var br uint64
	if newLo < ^uint64(0) {
		br = 1
	}
	hi2 := hi - Mask63 - br

	needSub := (hi>>63 != 0) || (hi == Mask63 && newLo == ^uint64(0))
	if needSub {
		return Fp{Lo: lo2, Hi: hi2}
	}
	return Fp{Lo: newLo, Hi: hi}
}

// Add returns a + b mod p.
func Add(a, b Fp) Fp {
	lo, c0 := bits.Add64(a.Lo, b.Lo, 0)
	hi, _ := bits.Add64(a.Hi, b.Hi, c0)
	return FromWords(lo, hi)
}

// Neg returns -a mod p, i.e. p - a.
func Neg(a Fp) Fp {
	const Plo = ^uint64(0)
	const Phi = Mask63

	lo, b0 := bits.Sub64(Plo, a.Lo, 0)
	hi, _ := bits.Sub64(Phi, a.Hi, b0)
	return FromWords(lo, hi)
}

// Sub returns a - b mod p.
func Sub(a, b Fp) Fp {
	return Add(a, Neg(b))
}

// mul128x128 computes the 256-bit product of two 128-bit operands, each
// given as (lo, hi) word pairs, as four 64-bit limbs z0..z3 (z0 least
// significant). Uses four 64x64 widening multiplies with carry
// propagation via addMany instead of a native 128-bit intermediate.
func mul128x128(a0, a1, b0, b1 uint64) (z0, z1, z2, z3 uint64) {
	c0lo, c0hi := bits.Mul64(a0, b0)
	c1lo, c1hi := bits.Mul64(a0, b1)
	c2lo, c2hi := bits.Mul64(a1, b0)
	c3lo, c3hi := bits.Mul64(a1, b1)

	z0 = c0lo

	s1, carry1 := addMany(c0hi, c1lo, c2lo)
	z1 = s1

	s2, carry2 := addMany(c1hi, c2hi, c3lo, carry1)
	z2 = s2

	s3, _ := addMany(c3hi, carry2)
	z3 = s3
	return
}

// reduce256 reduces a 256-bit product (z0 least significant limb) mod p.
func reduce256(z0, z1, z2, z3 uint64) Fp {
	L0 := z0
	L1 := z1 & Mask63

	H0 := (z1 >> 63) | (z2 << 1)
	H1 := (z2 >> 63) | (z3 << 1)
	H2 := z3 >> 63

	x0, c0 := bits.Add64(L0, H0, 0)
	x1, c1 := bits.Add64(L1, H1, c0)
	x2 := H2 + c1

	YL0 := x0
	YL1 := x1 & Mask63
	YH0 := (x1 >> 63) | (x2 << 1)

	y0, cy := bits.Add64(YL0, YH0, 0)
	y1 := YL1 + cy

	return FromWords(y0, y1)
}

// Mul returns a * b mod p.
func Mul(a, b Fp) Fp {
	z0, z1, z2, z3 := mul128x128(a.Lo, a.Hi, b.Lo, b.Hi)
	return reduce256(z0, z1, z2, z3)
}

// PowU64 computes a^e mod p via right-to-left binary exponentiation.
func PowU64(a Fp, e uint64) Fp {
	r := One
	for e != 0 {
		if e&1 != 0 {
			r = Mul(r, a)
		}
		a = Mul(a, a)
		e >>= 1
	}
	return r
}

// expBit returns bit pos (0 = lsb) of the 127-bit exponent e = p-2,
// given as its low 64 bits (eLo) and its next 63 bits (eHi).
func expBit(eLo, eHi uint64, pos int) uint64 {
	if pos < 64 {
		return (eLo >> uint(pos)) & 1
	}
	return (eHi >> uint(pos-64)) & 1
}

// windowWidth is the fixed-window size used by Inv's exponent walk.
const windowWidth = 5

// Inv computes a^(p-2) mod p, a's multiplicative inverse, via a
// windowed exponent walk (window width 5, table of 32 powers) scanning
// the 127-bit exponent from bit 126 down. Undefined for a == 0: the
// caller (the LPN-based PRF) guarantees R != 0 by construction.
func Inv(a Fp) Fp {
	const tblSize = 1 << windowWidth
	var tbl [tblSize]Fp
	tbl[0] = One
	tbl[1] = a
	for i := 2; i < tblSize; i++ {
		tbl[i] = Mul(tbl[i-1], a)
	}

	// e = p - 2 = 2^127 - 3.
	const eLo = ^uint64(0) - 2
	const eHi = Mask63

	r := One
	pos := 126
	for pos >= 0 {
		if expBit(eLo, eHi, pos) == 0 {
			r = Mul(r, r)
			pos--
			continue
		}

		l := pos - windowWidth + 1
		if l < 0 {
			l = 0
		}
		width := pos - l + 1

		var k uint64
		for i := 0; i < width; i++ {
			if expBit(eLo, eHi, l+i) != 0 {
				k |= uint64(1) << uint(i)
			}
		}
		for k >= tblSize {
			k >>= 1
			l++
		}

		for i := 0; i < pos-l+1; i++ {
			r = Mul(r, r)
		}
		r = Mul(r, tbl[k])
		pos = l - 1
	}

	return r
}

// Eq reports whether a and b are the same canonical field element.
func Eq(a, b Fp) bool {
	return a.Lo == b.Lo && a.Hi == b.Hi
}

// IsZero reports whether a is the canonical zero element.
func IsZero(a Fp) bool {
	return a.Lo == 0 && a.Hi == 0
}
