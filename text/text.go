// Package text packs UTF-8 text into a sequence of Ciphers and unpacks
// it back, the collaborator utils/text.hpp plays in the original: a
// single Cipher's idx domain is < B (too narrow for general text), so
// each Cipher here carries a whole uint64 chunk instead, built from
// enc_value the same way any other section-6 value encryption is.
package text

import (
	"encoding/binary"

	"pvachfhe/encrypt"
	"pvachfhe/scheme"
)

// chunkBytes is the number of UTF-8 bytes packed little-endian into one
// uint64 chunk, leaving the top byte zero as an explicit not-last-chunk
// marker is unnecessary: DecText trims at the caller-supplied byte
// length instead of a sentinel.
const chunkBytes = 8

// EncText encrypts s (as raw UTF-8 bytes) into a sequence of Ciphers,
// one per 8-byte chunk, zero-padded in the final chunk. ztagBase is the
// first ztag used; successive chunks take ztagBase+1, ztagBase+2, ...
func EncText(pk *scheme.PubKey, sk *scheme.SecKey, ztagBase uint64, s string) []scheme.Cipher {
	b := []byte(s)
	n := (len(b) + chunkBytes - 1) / chunkBytes
	if n == 0 {
		n = 1
	}
	out := make([]scheme.Cipher, n)
	for i := 0; i < n; i++ {
		var buf [chunkBytes]byte
		lo := i * chunkBytes
		hi := lo + chunkBytes
		if hi > len(b) {
			hi = len(b)
		}
		copy(buf[:], b[lo:hi])
		v := binary.LittleEndian.Uint64(buf[:])
		out[i] = encrypt.EncValue(pk, sk, ztagBase+uint64(i), v)
	}
	return out
}

// DecText decrypts chunks back to the original byte length nbytes of
// UTF-8 text. nbytes must be passed by the caller since the chunk
// encoding itself carries no length marker (consistent with enc_value's
// edge model, which never stores a plaintext length).
func DecText(pk *scheme.PubKey, sk *scheme.SecKey, chunks []scheme.Cipher, nbytes int) (string, error) {
	out := make([]byte, 0, nbytes)
	for _, c := range chunks {
		v, err := scheme.DecValue(pk, sk, c)
		if err != nil {
			return "", err
		}
		var buf [chunkBytes]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		take := chunkBytes
		if remain := nbytes - len(out); remain < take {
			take = remain
		}
		if take <= 0 {
			break
		}
		out = append(out, buf[:take]...)
	}
	return string(out), nil
}
