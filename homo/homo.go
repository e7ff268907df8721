// Package homo implements the homomorphic operations: add, sub, scale,
// neg, mul, and div-by-constant over Cipher, plus the layer composition
// and edge aggregation ct_mul needs.
package homo

import (
	"pvachfhe/bitvec"
	"pvachfhe/cipher"
	"pvachfhe/field"
)

// rehome appends src's layers into dst, rewriting any PROD layer's
// (PA, PB) by +off, and returns the extended slice.
func rehome(dst []cipher.Layer, src []cipher.Layer, off uint32) []cipher.Layer {
	for _, l := range src {
		if l.Rule == cipher.RuleProd {
			l.PA += off
			l.PB += off
		}
		dst = append(dst, l)
	}
	return dst
}

// Add concatenates A and B's layer lists (B's PROD layers rewritten by
// |A.L|) and re-homes B's edges by the same offset.
func Add(pk *cipher.PubKey, a, b cipher.Cipher) (cipher.Cipher, error) {
	offB := uint32(len(a.L))

	c := cipher.Cipher{
		L: make([]cipher.Layer, 0, len(a.L)+len(b.L)),
		E: make([]cipher.Edge, 0, len(a.E)+len(b.E)),
	}
	c.L = append(c.L, a.L...)
	c.L = rehome(c.L, b.L, offB)

	c.E = append(c.E, a.E...)
	for _, e := range b.E {
		e.LayerID += offB
		c.E = append(c.E, e)
	}

	if err := cipher.GuardBudget(pk, &c, "add"); err != nil {
		return cipher.Cipher{}, err
	}
	return c, nil
}

// Scale multiplies every edge weight of A by s.
func Scale(pk *cipher.PubKey, a cipher.Cipher, s field.Fp) cipher.Cipher {
	_ = pk
	c := cipher.Cipher{L: a.L, E: make([]cipher.Edge, len(a.E))}
	for i, e := range a.E {
		e.W = field.Mul(e.W, s)
		c.E[i] = e
	}
	return c
}

// Neg returns Scale(A, -1).
func Neg(pk *cipher.PubKey, a cipher.Cipher) cipher.Cipher {
	return Scale(pk, a, field.Neg(field.One))
}

// Sub returns Add(A, Neg(B)).
func Sub(pk *cipher.PubKey, a, b cipher.Cipher) (cipher.Cipher, error) {
	return Add(pk, a, Neg(pk, b))
}

// slotKey indexes ct_mul's aggregator by (layer-pair index, index sum
// mod B, sign).
type slotKey struct {
	lidIdx uint64
	k      int
	ch     cipher.Sign
}

type slot struct {
	w field.Fp
	s bitvec.BitVec
}

// Mul computes ct_mul(A, B): it appends a row-major Cartesian product
// of PROD layers (la outer, lb inner — load-bearing for commit_ct
// determinism) and folds every edge-pair's contribution into an
// aggregator keyed by (layer_pair, index_sum mod B, sign), emitting one
// edge per populated aggregator slot.
func Mul(pk *cipher.PubKey, a, b cipher.Cipher) (cipher.Cipher, error) {
	c := cipher.Cipher{L: make([]cipher.Layer, 0, len(a.L)+len(b.L)+len(a.L)*len(b.L))}
	c.L = append(c.L, a.L...)

	offB := uint32(len(c.L))
	c.L = rehome(c.L, b.L, offB)

	la := uint32(len(a.L))
	lb := uint32(len(b.L))

	for i := uint32(0); i < la; i++ {
		for j := uint32(0); j < lb; j++ {
			c.L = append(c.L, cipher.Layer{Rule: cipher.RuleProd, PA: i, PB: offB + j})
		}
	}

	bn := pk.Prm.B
	baseCount := uint32(len(a.L) + len(b.L))
	mBits := uint(pk.Prm.MBits)

	acc := make(map[slotKey]*slot)
	order := make([]slotKey, 0)

	for _, ea := range a.E {
		for _, eb := range b.E {
			lidIdx := uint64(ea.LayerID)*uint64(lb) + uint64(eb.LayerID)
			k := (int(ea.Idx) + int(eb.Idx)) % bn

			ch := cipher.SignP
			if ea.Ch != eb.Ch {
				ch = cipher.SignM
			}

			key := slotKey{lidIdx: lidIdx, k: k, ch: ch}
			sl, ok := acc[key]
			if !ok {
				sl = &slot{w: field.Zero, s: bitvec.Make(mBits)}
				acc[key] = sl
				order = append(order, key)
			}

			sl.w = field.Add(sl.w, field.Mul(ea.W, eb.W))
			sl.s.XorWith(ea.S)
			sl.s.XorWith(eb.S)
		}
	}

	c.E = make([]cipher.Edge, 0, len(order))
	for _, key := range order {
		sl := acc[key]
		lidIdx := key.lidIdx
		realLID := baseCount + uint32(lidIdx)
		c.E = append(c.E, cipher.Edge{
			LayerID: realLID,
			Idx:     uint16(key.k),
			Ch:      key.ch,
			W:       sl.w,
			S:       sl.s,
		})
	}

	if err := cipher.GuardBudget(pk, &c, "mul"); err != nil {
		return cipher.Cipher{}, err
	}
	return c, nil
}

// DivConst returns Scale(A, Inv(k)). Undefined for k == 0.
func DivConst(pk *cipher.PubKey, a cipher.Cipher, k field.Fp) cipher.Cipher {
	return Scale(pk, a, field.Inv(k))
}
