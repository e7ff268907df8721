// Package recrypt implements the eval-key and ct_recrypt collaborator
// spec.md leaves at the invariant level: a pool of fresh
// zero-ciphertexts mixed into a live Cipher to rebalance its edge
// carrier density back toward the [0.47, 0.53] band sigma_density
// measures, bailing out after a fixed number of rounds the way the
// original's four-iteration cap does.
package recrypt

import (
	"github.com/pkg/errors"

	"pvachfhe/bitvec"
	"pvachfhe/cipher"
	"pvachfhe/csprng"
	"pvachfhe/encrypt"
	"pvachfhe/homo"
	"pvachfhe/metrics"
)

// maxMixRounds bounds ct_recrypt's density-rebalancing loop, mirroring
// the original's "for (int it = 0; it < 4; it++)".
const maxMixRounds = 4

// densityLo, densityHi bound the acceptance band the mixing loop halts
// inside, taken verbatim from recrypt.hpp's "d >= 0.47 && d <= 0.53".
const (
	densityLo = 0.47
	densityHi = 0.53
)

// MakeEvalKey builds a fresh EvalKey: zeroPoolSize independent
// depth-shaped zero-encryptions plus a standing encryption of one,
// mirroring make_evalkey.
func MakeEvalKey(pk *cipher.PubKey, sk *cipher.SecKey, zeroPoolSize int, depthHint int) cipher.EvalKey {
	pool := make([]cipher.Cipher, zeroPoolSize)
	for i := range pool {
		pool[i] = encrypt.EncZeroDepth(pk, sk, uint64(0xA11CE00)+uint64(i), depthHint)
	}
	return cipher.EvalKey{
		ZeroPool: pool,
		EncOne:   encrypt.EncValue(pk, sk, 0xF00D, 1),
	}
}

// ubkApply permutes every edge's carrier vector by pk.Ubk, the public
// bit permutation keygen installs: new bit i of S becomes old bit
// Perm[i]. The permutation never touches an edge's w/idx/layer_id, so
// it cannot change what the Cipher decrypts to; it only reshuffles the
// carrier material sigma_density and commit_ct read.
func ubkApply(pk *cipher.PubKey, c *cipher.Cipher) {
	perm := pk.Ubk.Perm
	for i, e := range c.E {
		n := e.S.NBits()
		if int(n) != len(perm) {
			continue
		}
		permuted := bitvec.Make(n)
		for newBit, oldBit := range perm {
			if e.S.Test(uint(oldBit)) {
				permuted.Set(uint(newBit))
			}
		}
		c.E[i].S = permuted
	}
}

// CtRecrypt mixes zero-pool members into C until its edge density
// falls inside the acceptance band or maxMixRounds is exhausted,
// applies the public bit permutation after each mix, and compacts the
// result. An empty zero pool is a no-op, matching the original's
// early return.
func CtRecrypt(pk *cipher.PubKey, ek cipher.EvalKey, c cipher.Cipher) (cipher.Cipher, error) {
	if len(ek.ZeroPool) == 0 {
		return c, nil
	}

	r := c
	for it := 0; it < maxMixRounds; it++ {
		d := metrics.SigmaDensity(pk, r)
		if d >= densityLo && d <= densityHi {
			break
		}

		z := ek.ZeroPool[csprng.U64()%uint64(len(ek.ZeroPool))]
		var err error
		r, err = homo.Add(pk, r, z)
		if err != nil {
			return cipher.Cipher{}, errors.Wrap(err, "recrypt: mix round")
		}

		ubkApply(pk, &r)
		if err := cipher.GuardBudget(pk, &r, "recrypt"); err != nil {
			return cipher.Cipher{}, errors.Wrap(err, "recrypt: budget")
		}
	}

	return cipher.CompactEdges(r), nil
}
