// Package commit implements commit_ct: a canonical SHA-256 hash over a
// ciphertext and the public key it was produced under.
package commit

import (
	"pvachfhe/cipher"
	"pvachfhe/field"
	"pvachfhe/xhash"
)

// CommitCt returns SHA-256 of the canonical byte stream: the COMMIT
// domain tag, the public key's H digest and canon tag, then every
// layer and every edge of c in order. Stable only once compaction has
// run — repeated (layer_id, idx, ch) triples must already be merged.
func CommitCt(pk *cipher.PubKey, c cipher.Cipher) [32]byte {
	h := xhash.NewAcc256()
	h.Write([]byte(cipher.DomCommit))
	h.Write(pk.HDigest[:])
	xhash.AccU64(h, pk.CanonTag)

	for _, l := range c.L {
		h.Write([]byte{byte(l.Rule)})
		if l.Rule == cipher.RuleBase {
			xhash.AccU64(h, l.Seed.ZTag)
			xhash.AccU64(h, l.Seed.Nonce.Lo)
			xhash.AccU64(h, l.Seed.Nonce.Hi)
		} else {
			xhash.AccU64(h, uint64(l.PA))
			xhash.AccU64(h, uint64(l.PB))
		}
	}

	for _, e := range c.E {
		xhash.AccU64(h, uint64(e.LayerID))
		xhash.AccU64(h, uint64(e.Idx))
		h.Write([]byte{byte(e.Ch)})

		var w16 [16]byte
		putLE64(w16[0:8], e.W.Lo)
		putLE64(w16[8:16], e.W.Hi&field.Mask63)
		h.Write(w16[:])

		words := e.S.Words()
		nBytes := (e.S.NBits() + 7) / 8
		full := nBytes / 8
		rem := nBytes % 8

		for i := uint(0); i < full; i++ {
			var b [8]byte
			putLE64(b[:], words[i])
			h.Write(b[:])
		}
		if rem > 0 {
			var b [8]byte
			putLE64(b[:], words[full])
			h.Write(b[:rem])
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func putLE64(b []byte, x uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(x >> (8 * uint(i)))
	}
}
