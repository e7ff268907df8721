// Package decrypt implements dec_value: a topological resolution of
// every layer's R mask (PROD layers as the product of their children's
// R, with cycle detection) followed by an edge fold into Fp.
package decrypt

import (
	"pvachfhe/cipher"
	"pvachfhe/field"
	"pvachfhe/lpn"
)

// resolver carries the per-call memoisation state resolve() needs:
// cached R values, a computed flag, and a visited flag for cycle
// detection.
type resolver struct {
	pk   *cipher.PubKey
	sk   *cipher.SecKey
	c    *cipher.Cipher
	r    []field.Fp
	done []bool
	vis  []bool
}

func (rv *resolver) resolve(lid uint32) (field.Fp, error) {
	if rv.done[lid] {
		return rv.r[lid], nil
	}
	if rv.vis[lid] {
		return field.Fp{}, &cipher.ErrMalformedCipher{Reason: "layer DAG cycle"}
	}
	rv.vis[lid] = true

	l := rv.c.L[lid]
	var r field.Fp
	if l.Rule == cipher.RuleBase {
		r = lpn.R(rv.pk, rv.sk, l.Seed)
	} else {
		ra, err := rv.resolve(l.PA)
		if err != nil {
			return field.Fp{}, err
		}
		rb, err := rv.resolve(l.PB)
		if err != nil {
			return field.Fp{}, err
		}
		r = field.Mul(ra, rb)
	}

	rv.vis[lid] = false
	rv.r[lid] = r
	rv.done[lid] = true
	return r, nil
}

// DecValue computes Σ sign·w·g^idx·R^-1 over every edge of c, where R
// is resolved per layer via the DAG fold above.
func DecValue(pk *cipher.PubKey, sk *cipher.SecKey, c cipher.Cipher) (field.Fp, error) {
	if err := cipher.ValidateShape(c); err != nil {
		return field.Fp{}, err
	}

	n := len(c.L)
	rv := &resolver{
		pk:   pk,
		sk:   sk,
		c:    &c,
		r:    make([]field.Fp, n),
		done: make([]bool, n),
		vis:  make([]bool, n),
	}

	rInv := make([]field.Fp, n)
	for lid := 0; lid < n; lid++ {
		r, err := rv.resolve(uint32(lid))
		if err != nil {
			return field.Fp{}, err
		}
		rInv[lid] = field.Inv(r)
	}

	acc := field.Zero
	for _, e := range c.E {
		term := field.Mul(e.W, pk.PowgB[e.Idx])
		term = field.Mul(term, rInv[e.LayerID])
		if e.Ch == cipher.SignP {
			acc = field.Add(acc, term)
		} else {
			acc = field.Sub(acc, term)
		}
	}
	return acc, nil
}
