package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pvachfhe/cipher"
	"pvachfhe/decrypt"
	"pvachfhe/encrypt"
	"pvachfhe/homo"
	"pvachfhe/keygen"
)

func TestCheckMulGsumAllHolds(t *testing.T) {
	pk, sk := keygen.Generate(cipher.DefaultParams())
	a := encrypt.EncValue(pk, sk, 1, 6)
	b := encrypt.EncValue(pk, sk, 2, 7)

	c, err := homo.Mul(pk, a, b)
	require.NoError(t, err)

	require.True(t, CheckMulGsumAll(pk, a, b, c))
}

func TestSigmaDensityInUnitRange(t *testing.T) {
	pk, sk := keygen.Generate(cipher.DefaultParams())
	c := encrypt.EncValue(pk, sk, 1, 9)

	d := SigmaDensity(pk, c)
	require.GreaterOrEqual(t, d, 0.0)
	require.LessOrEqual(t, d, 1.0)
}

func TestDumperWritesHeaderOnce(t *testing.T) {
	pk, sk := keygen.Generate(cipher.DefaultParams())
	c := encrypt.EncValue(pk, sk, 1, 3)
	val, err := decrypt.DecValue(pk, sk, c)
	require.NoError(t, err)

	var buf bytes.Buffer
	d := NewDumper(&buf)
	require.NoError(t, d.Dump(pk, "t1", c, val))
	require.NoError(t, d.Dump(pk, "t2", c, val))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "tag,edges,layers,sigma_density,value_lo,value_hi", lines[0])
}
