// Package encrypt builds the single-BASE-layer ciphertexts the rest of
// the core operates on. Section 2's control-flow note puts it plainly:
// "encryption produces a Cipher with one BASE layer (the caller
// supplies the layer seed)." The edge construction below spreads v
// across mixWidth edges at idx 0..mixWidth-1 rather than a single
// idx=0 edge: one random LPN-masked share per nonzero idx, and the
// idx=0 share chosen so the g^idx-weighted sum telescopes back to
// exactly v. A lone edge per encryption would leave ct_mul's Cartesian
// aggregation nothing to fan out over; a real idx spread is what makes
// repeated squaring grow the edge set the way the LPN-masked design
// intends.
package encrypt

import (
	"pvachfhe/bitvec"
	"pvachfhe/cipher"
	"pvachfhe/csprng"
	"pvachfhe/field"
	"pvachfhe/lpn"
)

// newSeed draws a fresh RSeed: a caller-chosen ztag and a CSPRNG nonce,
// per Nonce128's "two u64 drawn from the CSPRNG at each BASE-layer
// creation" contract.
func newSeed(ztag uint64) cipher.RSeed {
	return cipher.RSeed{
		ZTag:  ztag,
		Nonce: cipher.Nonce128{Lo: csprng.U64(), Hi: csprng.U64()},
	}
}

// randomCarrier draws a fresh random BitVec of width m_bits, the
// per-edge s field encrypt gives each of its BASE-layer edges. Its bit pattern
// carries no semantic weight for decryption (only w and idx do); it
// exists so commit_ct and recrypt's density heuristic have real,
// edge-distinguishing material to work over, matching the spec's note
// that fresh nonces are what make independent encryptions of the same
// plaintext commit differently.
func randomCarrier(mBits int) bitvec.BitVec {
	return bitvec.FromWords(uint(mBits), randomBits(mBits))
}

func randomBits(nbits int) []uint64 {
	words := make([]uint64, (nbits+63)/64)
	for i := range words {
		words[i] = csprng.U64()
	}
	return words
}

// mixWidth is the number of carrier edges a fresh encryption spreads
// its plaintext across: idx 0 carries the balancing share, idx
// 1..mixWidth-1 carry independent random shares. Kept well under
// Params.B so four rounds of self-squaring (idx sums doubling each
// round) never wrap the index ring.
const mixWidth = 2

// EncValue encrypts a plaintext value v < pk.Prm.B into a fresh Cipher
// with one BASE layer seeded by ztag (caller-supplied, e.g. a
// per-value counter) and CSPRNG-drawn nonce. The plaintext is split
// into mixWidth shares share_0..share_{mixWidth-1} with
// Sigma share_i * g^i = v, each edge carrying w_i = share_i * R(seed)
// at idx i, so dec_value's Sigma w_i * g^i * R^-1 recovers v exactly
// while ct_mul sees more than one edge to fan out over.
func EncValue(pk *cipher.PubKey, sk *cipher.SecKey, ztag uint64, v uint64) cipher.Cipher {
	seed := newSeed(ztag)
	r := lpn.R(pk, sk, seed)

	shares := make([]field.Fp, mixWidth)
	balance := field.FromU64(v)
	for i := 1; i < mixWidth; i++ {
		shares[i] = field.FromWords(csprng.U64(), csprng.U64())
		balance = field.Sub(balance, field.Mul(shares[i], pk.PowgB[i]))
	}
	shares[0] = balance

	edges := make([]cipher.Edge, mixWidth)
	for i, share := range shares {
		edges[i] = cipher.Edge{
			LayerID: 0,
			Idx:     uint16(i),
			Ch:      cipher.SignP,
			W:       field.Mul(share, r),
			S:       randomCarrier(pk.Prm.MBits),
		}
	}

	return cipher.Cipher{
		L: []cipher.Layer{{Rule: cipher.RuleBase, Seed: seed}},
		E: edges,
	}
}

// EncZeroDepth encrypts the value 0, but front-loads depth additional
// PROD self-compositions so the resulting Cipher has the layer-count
// shape of a value that has already been multiplied depth times — the
// shape make_evalkey's zero pool needs so mixing a pool member into a
// live ciphertext doesn't itself change that ciphertext's effective
// depth. depth <= 0 returns a plain BASE-layer encryption of 0.
func EncZeroDepth(pk *cipher.PubKey, sk *cipher.SecKey, ztag uint64, depth int) cipher.Cipher {
	c := EncValue(pk, sk, ztag, 0)
	for d := 0; d < depth; d++ {
		c = cipher.Cipher{
			L: append(append([]cipher.Layer{}, c.L...), cipher.Layer{Rule: cipher.RuleProd, PA: uint32(len(c.L) - 1), PB: uint32(len(c.L) - 1)}),
			E: c.E,
		}
	}
	return c
}
