package recrypt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pvachfhe/cipher"
	"pvachfhe/decrypt"
	"pvachfhe/encrypt"
	"pvachfhe/keygen"
)

func TestCtRecryptPreservesValue(t *testing.T) {
	pk, sk := keygen.Generate(cipher.DefaultParams())
	c := encrypt.EncValue(pk, sk, 1, 37)

	ek := MakeEvalKey(pk, sk, 8, 0)
	r, err := CtRecrypt(pk, ek, c)
	require.NoError(t, err)

	got, err := decrypt.DecValue(pk, sk, r)
	require.NoError(t, err)
	require.Equal(t, uint64(37), got.Lo)
}

func TestCtRecryptEmptyPoolIsNoop(t *testing.T) {
	pk, sk := keygen.Generate(cipher.DefaultParams())
	c := encrypt.EncValue(pk, sk, 1, 37)

	r, err := CtRecrypt(pk, cipher.EvalKey{}, c)
	require.NoError(t, err)
	require.Equal(t, c, r)
}
