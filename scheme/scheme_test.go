package scheme

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pvachfhe/cipher"
)

func freshKeys(t *testing.T) (*PubKey, *SecKey) {
	t.Helper()
	pk, sk := Keygen(DefaultParams())
	return pk, sk
}

func mustDec(t *testing.T, pk *PubKey, sk *SecKey, c Cipher) uint64 {
	t.Helper()
	v, err := DecValue(pk, sk, c)
	require.NoError(t, err)
	return v
}

func TestRoundTripBasicValues(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	for _, v := range []uint64{0, 1, 42, 17, 100} {
		c := EncValue(pk, sk, z.Next(), v)
		require.Equal(t, v, mustDec(t, pk, sk, c))
	}
}

func TestAdditiveIdentity(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 42)
	zero := EncValue(pk, sk, z.Next(), 0)

	sum, err := CtAdd(pk, a, zero)
	require.NoError(t, err)
	require.Equal(t, uint64(42), mustDec(t, pk, sk, sum))
}

func TestMultiplicativeAbsorberAndIdentity(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 42)
	zero := EncValue(pk, sk, z.Next(), 0)
	one := EncValue(pk, sk, z.Next(), 1)

	m0, err := CtMul(pk, a, zero)
	require.NoError(t, err)
	require.Equal(t, uint64(0), mustDec(t, pk, sk, m0))

	m1, err := CtMul(pk, a, one)
	require.NoError(t, err)
	require.Equal(t, uint64(42), mustDec(t, pk, sk, m1))
}

func TestSelfSubtraction(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 42)
	diff, err := CtSub(pk, a, a)
	require.NoError(t, err)
	require.Equal(t, uint64(0), mustDec(t, pk, sk, diff))
}

func TestCommutativity(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 9)
	b := EncValue(pk, sk, z.Next(), 13)

	ab, err := CtAdd(pk, a, b)
	require.NoError(t, err)
	ba, err := CtAdd(pk, b, a)
	require.NoError(t, err)
	require.Equal(t, mustDec(t, pk, sk, ab), mustDec(t, pk, sk, ba))

	axb, err := CtMul(pk, a, b)
	require.NoError(t, err)
	bxa, err := CtMul(pk, b, a)
	require.NoError(t, err)
	require.Equal(t, mustDec(t, pk, sk, axb), mustDec(t, pk, sk, bxa))
}

func TestAssociativity(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 2)
	b := EncValue(pk, sk, z.Next(), 3)
	c := EncValue(pk, sk, z.Next(), 7)

	abC, err := CtAdd(pk, mustAdd(t, pk, a, b), c)
	require.NoError(t, err)
	aBc, err := CtAdd(pk, a, mustAdd(t, pk, b, c))
	require.NoError(t, err)
	require.Equal(t, mustDec(t, pk, sk, abC), mustDec(t, pk, sk, aBc))

	abCMul, err := CtMul(pk, mustMul(t, pk, a, b), c)
	require.NoError(t, err)
	aBcMul, err := CtMul(pk, a, mustMul(t, pk, b, c))
	require.NoError(t, err)
	require.Equal(t, mustDec(t, pk, sk, abCMul), mustDec(t, pk, sk, aBcMul))
}

func mustAdd(t *testing.T, pk *PubKey, a, b Cipher) Cipher {
	t.Helper()
	c, err := CtAdd(pk, a, b)
	require.NoError(t, err)
	return c
}

func mustMul(t *testing.T, pk *PubKey, a, b Cipher) Cipher {
	t.Helper()
	c, err := CtMul(pk, a, b)
	require.NoError(t, err)
	return c
}

func TestDistributivity(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 5)
	b := EncValue(pk, sk, z.Next(), 11)
	c := EncValue(pk, sk, z.Next(), 6)

	lhs := mustMul(t, pk, a, mustAdd(t, pk, b, c))
	rhs := mustAdd(t, pk, mustMul(t, pk, a, b), mustMul(t, pk, a, c))
	require.Equal(t, mustDec(t, pk, sk, lhs), mustDec(t, pk, sk, rhs))
}

func TestBinomialExpansion(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 4)
	b := EncValue(pk, sk, z.Next(), 9)

	apb := mustAdd(t, pk, a, b)
	lhs := mustMul(t, pk, apb, apb)

	aSq := mustMul(t, pk, a, a)
	bSq := mustMul(t, pk, b, b)
	ab := mustMul(t, pk, a, b)
	twoAB := mustAdd(t, pk, ab, ab)
	rhs := mustAdd(t, pk, mustAdd(t, pk, aSq, twoAB), bSq)

	require.Equal(t, mustDec(t, pk, sk, lhs), mustDec(t, pk, sk, rhs))
}

func TestDifferenceOfSquares(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 15)
	b := EncValue(pk, sk, z.Next(), 6)

	apb := mustAdd(t, pk, a, b)
	amb, err := CtSub(pk, a, b)
	require.NoError(t, err)

	lhs := mustMul(t, pk, amb, apb)
	rhs, err := CtSub(pk, mustMul(t, pk, a, a), mustMul(t, pk, b, b))
	require.NoError(t, err)

	require.Equal(t, mustDec(t, pk, sk, lhs), mustDec(t, pk, sk, rhs))
}

func TestSquaringDepthDoublesAndEdgesGrow(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	c := EncValue(pk, sk, z.Next(), 2)

	want := uint64(2)
	prevLayers := len(c.L)
	prevEdges := len(c.E)
	for k := 1; k <= 4; k++ {
		var err error
		c, err = CtMul(pk, c, c)
		require.NoError(t, err)
		want *= want

		require.Equal(t, want, mustDec(t, pk, sk, c))
		require.Greater(t, len(c.L), prevLayers)
		require.Greater(t, len(c.E), prevEdges)
		prevLayers = len(c.L)
		prevEdges = len(c.E)
	}
}

func TestFibonacciHomomorphic(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 0)
	b := EncValue(pk, sk, z.Next(), 1)

	for i := 0; i < 9; i++ {
		next := mustAdd(t, pk, a, b)
		a, b = b, next
	}
	require.Equal(t, uint64(55), mustDec(t, pk, sk, b))
}

func TestFactorialSix(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	acc := EncValue(pk, sk, z.Next(), 1)
	for i := uint64(2); i <= 6; i++ {
		term := EncValue(pk, sk, z.Next(), i)
		acc = mustMul(t, pk, acc, term)
	}
	require.Equal(t, uint64(720), mustDec(t, pk, sk, acc))
}

func TestSumOfSquares(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	acc := EncValue(pk, sk, z.Next(), 0)
	for i := uint64(1); i <= 5; i++ {
		x := EncValue(pk, sk, z.Next(), i)
		sq := mustMul(t, pk, x, x)
		acc = mustAdd(t, pk, acc, sq)
	}
	require.Equal(t, uint64(55), mustDec(t, pk, sk, acc))
}

func TestEncryptionIsHidingButConsistent(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	c1 := EncValue(pk, sk, z.Next(), 100)
	c2 := EncValue(pk, sk, z.Next(), 100)

	require.NotEqual(t, c1.E[0].W, c2.E[0].W, "fresh nonces must give different first-edge weights")
	require.Equal(t, mustDec(t, pk, sk, c1), mustDec(t, pk, sk, c2))
}

func TestCommitDiffersAcrossIndependentEncryptions(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	c1 := EncValue(pk, sk, z.Next(), 100)
	c2 := EncValue(pk, sk, z.Next(), 100)

	require.NotEqual(t, CommitCt(pk, c1), CommitCt(pk, c2))
}

func TestScenarioAddMul(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 42)
	b := EncValue(pk, sk, z.Next(), 17)

	sum := mustAdd(t, pk, a, b)
	require.Equal(t, uint64(59), mustDec(t, pk, sk, sum))

	prod := mustMul(t, pk, a, b)
	require.Equal(t, uint64(714), mustDec(t, pk, sk, prod))
}

func TestScenarioPolynomial(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	x := EncValue(pk, sk, z.Next(), 5)
	two := EncValue(pk, sk, z.Next(), 2)
	three := EncValue(pk, sk, z.Next(), 3)
	four := EncValue(pk, sk, z.Next(), 4)

	x2 := mustMul(t, pk, x, x)
	x3 := mustMul(t, pk, x2, x)
	twoX2 := mustMul(t, pk, two, x2)
	threeX := mustMul(t, pk, three, x)

	result := mustAdd(t, pk, mustAdd(t, pk, mustAdd(t, pk, x3, twoX2), threeX), four)
	require.Equal(t, uint64(194), mustDec(t, pk, sk, result))
}

func TestScenarioNestedExpression(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	three := EncValue(pk, sk, z.Next(), 3)
	five := EncValue(pk, sk, z.Next(), 5)
	seven := EncValue(pk, sk, z.Next(), 7)

	inner := mustAdd(t, pk, three, five)
	scaled := mustMul(t, pk, inner, seven)
	minusThree, err := CtSub(pk, scaled, three)
	require.NoError(t, err)
	result := mustMul(t, pk, minusThree, five)

	require.Equal(t, uint64(265), mustDec(t, pk, sk, result))
}

func TestScenarioSumZeroToNinetyNine(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	acc := EncValue(pk, sk, z.Next(), 0)
	for i := uint64(0); i < 100; i++ {
		term := EncValue(pk, sk, z.Next(), i)
		acc = mustAdd(t, pk, acc, term)
	}
	require.Equal(t, uint64(4950), mustDec(t, pk, sk, acc))
}

func TestInvariantLayerAndEdgeShapes(t *testing.T) {
	pk, sk := freshKeys(t)
	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 3)
	b := EncValue(pk, sk, z.Next(), 4)

	for _, c := range []Cipher{
		mustAdd(t, pk, a, b),
		mustMul(t, pk, a, b),
		mustMul(t, pk, mustAdd(t, pk, a, b), mustMul(t, pk, a, b)),
	} {
		for _, e := range c.E {
			require.Less(t, int(e.LayerID), len(c.L))
		}
		for k, l := range c.L {
			if l.Rule == cipher.RuleProd {
				require.Less(t, l.PA, uint32(k))
				require.Less(t, l.PB, uint32(k))
			}
		}
	}
}

func TestBudgetExceeded(t *testing.T) {
	pk, sk := freshKeys(t)
	pk.Prm.EdgeBudget = 1

	var z ZtagSeq
	a := EncValue(pk, sk, z.Next(), 3)
	b := EncValue(pk, sk, z.Next(), 4)

	_, err := CtAdd(pk, a, b)
	require.Error(t, err)
}
