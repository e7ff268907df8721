package lpn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pvachfhe/cipher"
	"pvachfhe/field"
)

func testKeys() (*cipher.PubKey, *cipher.SecKey) {
	prm := cipher.DefaultParams()
	pk := &cipher.PubKey{Prm: prm, CanonTag: 0xABCD}
	sk := &cipher.SecKey{
		PRFK:     [4]uint64{1, 2, 3, 4},
		LPNSBits: make([]uint64, (prm.LPNn+63)/64),
	}
	for i := range sk.LPNSBits {
		sk.LPNSBits[i] = uint64(i+1) * 0x9E3779B97F4A7C15
	}
	return pk, sk
}

func TestRIsDeterministicAndNonzero(t *testing.T) {
	pk, sk := testKeys()
	seed := cipher.RSeed{ZTag: 7, Nonce: cipher.Nonce128{Lo: 11, Hi: 22}}

	r1 := R(pk, sk, seed)
	r2 := R(pk, sk, seed)
	require.True(t, field.Eq(r1, r2))
	require.False(t, field.IsZero(r1))
}

func TestRDependsOnEveryKeyComponent(t *testing.T) {
	pk, sk := testKeys()
	base := cipher.RSeed{ZTag: 7, Nonce: cipher.Nonce128{Lo: 11, Hi: 22}}
	r0 := R(pk, sk, base)

	variants := []cipher.RSeed{
		{ZTag: 8, Nonce: base.Nonce},
		{ZTag: base.ZTag, Nonce: cipher.Nonce128{Lo: 12, Hi: base.Nonce.Hi}},
		{ZTag: base.ZTag, Nonce: cipher.Nonce128{Lo: base.Nonce.Lo, Hi: 23}},
	}
	for _, v := range variants {
		rv := R(pk, sk, v)
		require.False(t, field.Eq(r0, rv), "changing the seed must change R")
	}

	pk2 := *pk
	pk2.CanonTag = pk.CanonTag + 1
	require.False(t, field.Eq(r0, R(&pk2, sk, base)), "canon_tag must affect R")

	sk2 := *sk
	sk2.PRFK[0]++
	require.False(t, field.Eq(r0, R(pk, &sk2, base)), "prf_k must affect R")
}

func TestHashToFpNonzeroRejectsZeroAndMaxClass(t *testing.T) {
	require.True(t, field.Eq(HashToFpNonzero(0, 0), field.One))
	require.True(t, field.Eq(HashToFpNonzero(^uint64(0), field.Mask63), field.One))
}
