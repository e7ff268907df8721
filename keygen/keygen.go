// Package keygen supplies a concrete, self-consistent key generator for
// the scheme. spec.md specifies keygen only at the level of the
// invariants its outputs must satisfy — the concrete construction here
// exists purely so the core (field, cipher, homo, decrypt, commit) can
// be exercised end-to-end by tests and the demo CLI; it makes no
// security claim beyond those invariants.
package keygen

import (
	"math/big"

	"github.com/google/uuid"

	"pvachfhe/bitvec"
	"pvachfhe/cipher"
	"pvachfhe/csprng"
	"pvachfhe/field"
	"pvachfhe/xhash"
)

// primeP returns p = 2^127 - 1 as a big.Int, used only for the
// omega_B witness search below — the field package itself never needs
// an arbitrary-precision representation of p.
func primeP() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 127)
	return p.Sub(p, big.NewInt(1))
}

// fpPowBig computes a^e mod p for an exponent too wide for PowU64's
// uint64, via square-and-multiply over e's bits from the top down.
func fpPowBig(a field.Fp, e *big.Int) field.Fp {
	r := field.One
	for i := e.BitLen() - 1; i >= 0; i-- {
		r = field.Mul(r, r)
		if e.Bit(i) == 1 {
			r = field.Mul(r, a)
		}
	}
	return r
}

// findPrimitiveBthRoot returns an element of order exactly B in Fp*.
// Since B (127 by default) is prime and divides p-1, any a^((p-1)/B)
// that isn't 1 automatically has order B.
func findPrimitiveBthRoot(b int) field.Fp {
	pMinus1 := new(big.Int).Sub(primeP(), big.NewInt(1))
	exp := new(big.Int).Div(pMinus1, big.NewInt(int64(b)))

	for cand := uint64(2); ; cand++ {
		h := fpPowBig(field.FromU64(cand), exp)
		if !field.Eq(h, field.One) {
			return h
		}
	}
}

// powgTable returns [omega^0, omega^1, ..., omega^(b-1)].
func powgTable(omega field.Fp, b int) []field.Fp {
	out := make([]field.Fp, b)
	acc := field.One
	for k := 0; k < b; k++ {
		out[k] = acc
		acc = field.Mul(acc, omega)
	}
	return out
}

// newPermutation returns a uniformly random permutation of [0, n) and
// its inverse, via Fisher-Yates over the package CSPRNG.
func newPermutation(n int) cipher.Ubk {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(csprng.U64() % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	inv := make([]int, n)
	for i, p := range perm {
		inv[p] = i
	}
	return cipher.Ubk{Perm: perm, Inv: inv}
}

// randomBits returns a word slice of exactly the given bit width, for
// SecKey.LPNSBits and the placeholder H rows.
func randomBits(nbits int) []uint64 {
	words := make([]uint64, (nbits+63)/64)
	for i := range words {
		words[i] = csprng.U64()
	}
	return words
}

// canonTagFromUUID folds a fresh random UUID's 128 bits into one u64 by
// XOR-ing its two halves, giving each keygen call an
// operationally-distinct instance tag without a bare incrementing
// counter.
func canonTagFromUUID() uint64 {
	id := uuid.New()
	var lo, hi uint64
	for i := 0; i < 8; i++ {
		lo |= uint64(id[i]) << (8 * uint(i))
	}
	for i := 0; i < 8; i++ {
		hi |= uint64(id[8+i]) << (8 * uint(i))
	}
	return lo ^ hi
}

// hRowCount is the placeholder number of LPN matrix rows kept on the
// PubKey purely to give H_digest something real to hash over; the
// concrete LPN matrix construction itself is the keygen collaborator's
// business and is opaque to the core.
const hRowCount = 8

// Generate produces a fresh (PubKey, SecKey) pair satisfying section
// 3's invariants: SecKey.LPNSBits totals >= Params.LPNn bits, PubKey.Ubk
// is a valid permutation+inverse over [0, MBits), PubKey.OmegaB is a
// primitive B-th root of unity with PowgB its power table, and
// PubKey.HDigest is bound to PubKey.H.
func Generate(prm cipher.Params) (*cipher.PubKey, *cipher.SecKey) {
	sk := &cipher.SecKey{
		PRFK:     [4]uint64{csprng.U64(), csprng.U64(), csprng.U64(), csprng.U64()},
		LPNSBits: randomBits(prm.LPNn),
	}

	h := make([]bitvec.BitVec, hRowCount)
	acc := xhash.NewAcc256()
	acc.Write([]byte(cipher.DomHGen))
	for i := range h {
		row := bitvec.FromWords(uint(prm.MBits), randomBits(prm.MBits))
		h[i] = row
		for _, w := range row.Words() {
			xhash.AccU64(acc, w)
		}
	}
	var hDigest [32]byte
	copy(hDigest[:], acc.Sum(nil))

	omega := findPrimitiveBthRoot(prm.B)

	pk := &cipher.PubKey{
		Prm:      prm,
		CanonTag: canonTagFromUUID(),
		H:        h,
		Ubk:      newPermutation(prm.MBits),
		HDigest:  hDigest,
		OmegaB:   omega,
		PowgB:    powgTable(omega, prm.B),
	}

	return pk, sk
}
