package field

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randFp(r *rand.Rand) Fp {
	lo := r.Uint64()
	hi := r.Uint64() & Mask63
	return FromWords(lo, hi)
}

func TestFromWordsCanonicalizesZeroClass(t *testing.T) {
	// (Hi=2^63-1, Lo=2^64-1) is the unique non-zero-looking encoding of
	// the zero residue class; FromWords must fold it to (0,0).
	z := FromWords(^uint64(0), Mask63)
	require.True(t, IsZero(z))
}

func TestAddNegIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		a := randFp(r)
		require.True(t, IsZero(Add(a, Neg(a))))
	}
}

func TestFieldAxioms(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 10000; i++ {
		a, b, c := randFp(r), randFp(r), randFp(r)

		require.True(t, Eq(Add(a, b), Add(b, a)), "add commutes")
		require.True(t, Eq(Add(Add(a, b), c), Add(a, Add(b, c))), "add assoc")
		require.True(t, Eq(Mul(a, b), Mul(b, a)), "mul commutes")
		require.True(t, Eq(Mul(Mul(a, b), c), Mul(a, Mul(b, c))), "mul assoc")
		require.True(t, Eq(Mul(a, Add(b, c)), Add(Mul(a, b), Mul(a, c))), "distributive")
		require.True(t, Eq(Add(a, Zero), a), "additive identity")
		require.True(t, Eq(Mul(a, One), a), "multiplicative identity")
	}
}

func TestInv(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		a := randFp(r)
		if IsZero(a) {
			continue
		}
		inv := Inv(a)
		require.True(t, Eq(Mul(a, inv), One))
	}
}

func TestPowU64MatchesRepeatedMul(t *testing.T) {
	a := FromU64(7)
	got := PowU64(a, 5)
	want := Mul(Mul(Mul(Mul(a, a), a), a), a)
	require.True(t, Eq(got, want))
}

func TestSubSelfIsZero(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		a := randFp(r)
		require.True(t, IsZero(Sub(a, a)))
	}
}
