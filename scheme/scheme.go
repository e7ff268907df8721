// Package scheme composes the core components behind the external API
// surface section 6 names: keygen, enc_value/dec_value, the
// homomorphic ops, and commit_ct, plus a ztag sequencer so callers
// don't have to hand-roll one.
package scheme

import (
	"pvachfhe/cipher"
	"pvachfhe/commit"
	"pvachfhe/decrypt"
	"pvachfhe/encrypt"
	"pvachfhe/field"
	"pvachfhe/homo"
	"pvachfhe/keygen"
)

// Re-exported types so callers only need to import this package for
// ordinary use.
type (
	PubKey = cipher.PubKey
	SecKey = cipher.SecKey
	Params = cipher.Params
	Cipher = cipher.Cipher
)

// DefaultParams returns the scheme's fixed default parameter set.
func DefaultParams() Params {
	return cipher.DefaultParams()
}

// Keygen produces a fresh (PubKey, SecKey) pair under prm.
func Keygen(prm Params) (*PubKey, *SecKey) {
	return keygen.Generate(prm)
}

// ZtagSeq hands out distinct BASE-layer seed tags within one process,
// so repeated EncValue calls never collide on ztag even when called
// back-to-back (nonces alone already guarantee distinct RSeeds, but a
// moving ztag keeps each BASE layer's seed readable in debug dumps).
type ZtagSeq struct{ next uint64 }

// Next returns the next ztag in the sequence.
func (z *ZtagSeq) Next() uint64 {
	z.next++
	return z.next
}

// EncValue encrypts v < pk.Prm.B under a fresh nonce and the given ztag.
func EncValue(pk *PubKey, sk *SecKey, ztag uint64, v uint64) Cipher {
	return encrypt.EncValue(pk, sk, ztag, v)
}

// DecValue decrypts c and returns the low 64-bit word of the Fp value
// its edges fold to.
func DecValue(pk *PubKey, sk *SecKey, c Cipher) (uint64, error) {
	r, err := decrypt.DecValue(pk, sk, c)
	if err != nil {
		return 0, err
	}
	// The low word is the exact value for any result below 2^64, which
	// covers every uint64 plaintext EncValue accepts. The high word is
	// dropped without a check, so a result at or above 2^64 (such as a
	// negative difference, which wraps mod p) comes back truncated.
	return r.Lo, nil
}

// DecValueFp recovers the full field element a ciphertext decrypts to,
// for callers that need to compare Fp values directly rather than
// assume the low-word shortcut DecValue takes.
func DecValueFp(pk *PubKey, sk *SecKey, c Cipher) (field.Fp, error) {
	return decrypt.DecValue(pk, sk, c)
}

// CtAdd, CtSub, CtMul implement the three homomorphic binary ops.
func CtAdd(pk *PubKey, a, b Cipher) (Cipher, error) { return homo.Add(pk, a, b) }
func CtSub(pk *PubKey, a, b Cipher) (Cipher, error) { return homo.Sub(pk, a, b) }
func CtMul(pk *PubKey, a, b Cipher) (Cipher, error) { return homo.Mul(pk, a, b) }

// CtScale, CtNeg, CtDivConst implement the unary/constant ops.
func CtScale(pk *PubKey, a Cipher, s uint64) Cipher {
	return homo.Scale(pk, a, field.FromU64(s))
}
func CtNeg(pk *PubKey, a Cipher) Cipher { return homo.Neg(pk, a) }
func CtDivConst(pk *PubKey, a Cipher, k uint64) Cipher {
	return homo.DivConst(pk, a, field.FromU64(k))
}

// CommitCt returns the canonical SHA-256 commitment of c under pk.
func CommitCt(pk *PubKey, c Cipher) [32]byte {
	return commit.CommitCt(pk, c)
}
