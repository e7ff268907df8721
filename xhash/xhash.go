// Package xhash provides the two hash primitives the scheme's core
// depends on: SHA-256 for commitments and the public key's H digest, via the standard
// library (FIPS 180-4, the idiomatic Go choice — no corpus example
// hand-rolls SHA-256 when crypto/sha256 is available), and a
// SHAKE-256-based extensible output function for the LPN PRF and
// Toeplitz top-row generation, backed by golang.org/x/crypto/sha3 (the
// same import the teacher already uses for SHA3-512/HMAC-SHA3).
package xhash

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Sum256 hashes data with SHA-256 in one shot.
func Sum256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// NewAcc256 returns a fresh incremental SHA-256 accumulator, the
// stream commit_ct builds the canonical commitment over.
func NewAcc256() hash.Hash {
	return sha256.New()
}

// AccU64 absorbs x into h in little-endian, the accumulator helper
// the spec names sha256_acc_u64.
func AccU64(h hash.Hash, x uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	h.Write(b[:])
}

// Xof wraps a SHAKE-256 extendable output function, domain-separated by
// a short ASCII label followed by a sequence of seed words. Mirrors
// XofShake.init: absorb(label) then absorb(each seed word, LE), then
// pad and switch to squeezing.
type Xof struct {
	sh sha3.ShakeHash
}

// NewXof initialises a SHAKE-256 XOF with the given domain label and
// key-stream seed words, both absorbed before the first Squeeze call.
func NewXof(label string, seed []uint64) *Xof {
	sh := sha3.NewShake256()
	sh.Write([]byte(label))
	var b [8]byte
	for _, w := range seed {
		binary.LittleEndian.PutUint64(b[:], w)
		sh.Write(b[:])
	}
	return &Xof{sh: sh}
}

// TakeU64 squeezes the next pseudorandom 64-bit word.
func (x *Xof) TakeU64() uint64 {
	var b [8]byte
	x.sh.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Bounded draws u64 words and returns one uniform in [0, m), via
// rejection sampling: any draw >= floor(2^64/m)*m is discarded so the
// result carries no modular bias. m <= 1 always yields 0.
func (x *Xof) Bounded(m uint64) uint64 {
	if m <= 1 {
		return 0
	}
	rem := (^uint64(0)%m + 1) % m // 2^64 mod m
	for {
		v := x.TakeU64()
		// -rem wraps to 2^64 - rem, i.e. floor(2^64/m)*m.
		if rem == 0 || v < -rem {
			return v % m
		}
	}
}
