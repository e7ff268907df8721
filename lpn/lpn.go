// Package lpn implements the LPN-based pseudorandom function R(seed):
// a non-zero field element deterministically derived from (pk, sk,
// seed), believed (under the Learning Parity with Noise assumption at
// the scheme's fixed parameters) to be computationally indistinguishable
// from uniform over Fp*.
package lpn

import (
	"pvachfhe/bitvec"
	"pvachfhe/cipher"
	"pvachfhe/field"
	"pvachfhe/toeplitz"
	"pvachfhe/xhash"
)

// HashToFpNonzero maps a 128-bit word pair to a nonzero field element:
// fp_from_words(lo, hi & Mask63), substituting 1 for the zero class and
// for the p-1 class. Rejecting both bounds the PRF's distinguishing
// advantage at this stage; see the Open Questions note on canonicalising
// before rejecting, which this does (FromWords runs first).
func HashToFpNonzero(lo, hi uint64) field.Fp {
	r := field.FromWords(lo, hi&field.Mask63)
	if field.IsZero(r) {
		return field.One
	}
	if field.Eq(r, field.Neg(field.One)) {
		return field.One
	}
	return r
}

// keyStream returns sk.PRFK (4 words) ++ pk.CanonTag ++ seed.ZTag ++
// seed.Nonce.{Lo,Hi} — the common key material every XOF in this
// package is initialised with.
func keyStream(pk *cipher.PubKey, sk *cipher.SecKey, seed cipher.RSeed) []uint64 {
	return []uint64{
		sk.PRFK[0], sk.PRFK[1], sk.PRFK[2], sk.PRFK[3],
		pk.CanonTag, seed.ZTag, seed.Nonce.Lo, seed.Nonce.Hi,
	}
}

// makeYBits draws pk.Prm.LPNt Bernoulli-noised LPN samples under
// domain label dom, packed into ceil(LPNt/64) words.
func makeYBits(pk *cipher.PubKey, sk *cipher.SecKey, seed cipher.RSeed, dom string) []uint64 {
	t := pk.Prm.LPNt
	n := pk.Prm.LPNn
	sWords := (n + 63) / 64

	xof := xhash.NewXof(dom, keyStream(pk, sk, seed))

	ybits := make([]uint64, (t+63)/64)
	num := uint64(pk.Prm.LPNTauNum)
	den := uint64(pk.Prm.LPNTauDen)

	for r := 0; r < t; r++ {
		dot := 0
		for wi := 0; wi < sWords; wi++ {
			row := xof.TakeU64()
			var s uint64
			if wi < len(sk.LPNSBits) {
				s = sk.LPNSBits[wi]
			}
			dot ^= bitvec.Parity64(row & s)
		}
		e := 0
		if xof.Bounded(den) < num {
			e = 1
		}
		y := uint64(dot ^ e)
		ybits[r>>6] ^= y << uint(r&63)
	}
	return ybits
}

// maxToeplitzAttempts bounds the Toeplitz-stage retry when the mapped
// output lands on the multiplicative identity; on exhaustion the
// tolerated fallback is 1 (see prfRCore).
const maxToeplitzAttempts = 16

// prfRCore derives one domain-separated factor of R(seed): it samples
// the LPN relation under dom, compresses it through a fresh Toeplitz
// top row (re-keyed with the TOEP label) up to maxToeplitzAttempts
// times until the result isn't the multiplicative identity, and maps
// the final output through HashToFpNonzero.
func prfRCore(pk *cipher.PubKey, sk *cipher.SecKey, seed cipher.RSeed, dom string) field.Fp {
	ybits := makeYBits(pk, sk, seed, dom)

	seedWords := keyStream(pk, sk, seed)
	xof := xhash.NewXof(cipher.DomToep, seedWords)

	topWords := (pk.Prm.LPNt + 127 + 63) / 64

	for att := 0; att < maxToeplitzAttempts; att++ {
		top := make([]uint64, topWords)
		for i := range top {
			top[i] = xof.TakeU64()
		}

		lo, hi := toeplitz.Toep127(top, pk.Prm.LPNt, ybits)
		r := HashToFpNonzero(lo, hi)
		if !field.Eq(r, field.One) {
			return r
		}
	}
	return field.One
}

// R computes prf_R(pk, sk, seed) = prfRCore(..., PRF_R1) *
// prfRCore(..., PRF_R2) * prfRCore(..., PRF_R3), broadening the
// effective output distribution with a three-factor product.
func R(pk *cipher.PubKey, sk *cipher.SecKey, seed cipher.RSeed) field.Fp {
	r1 := prfRCore(pk, sk, seed, cipher.DomPRFR1)
	r2 := prfRCore(pk, sk, seed, cipher.DomPRFR2)
	r3 := prfRCore(pk, sk, seed, cipher.DomPRFR3)
	return field.Mul(field.Mul(r1, r2), r3)
}
