package toeplitz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToep127IsDeterministic(t *testing.T) {
	top := []uint64{0xdeadbeefcafef00d, 0x0102030405060708, 0x1111222233334444, 0x5555666677778888}
	y := []uint64{0xabcdef0123456789, 0x0f0f0f0f0f0f0f0f}

	lo1, hi1 := Toep127(top, 128, y)
	lo2, hi2 := Toep127(top, 128, y)

	require.Equal(t, lo1, lo2)
	require.Equal(t, hi1, hi2)
	require.Zero(t, hi1>>63, "bit 127 must never be set")
}

func TestToep127ChangesWithY(t *testing.T) {
	top := []uint64{0xdeadbeefcafef00d, 0x0102030405060708, 0x1111222233334444, 0x5555666677778888}
	y1 := []uint64{0xabcdef0123456789, 0x0f0f0f0f0f0f0f0f}
	y2 := []uint64{0xabcdef012345678a, 0x0f0f0f0f0f0f0f0f}

	lo1, hi1 := Toep127(top, 128, y1)
	lo2, hi2 := Toep127(top, 128, y2)

	require.False(t, lo1 == lo2 && hi1 == hi2, "flipping the two low bits of y should change the extractor output")
}

func TestToep127ZeroYGivesZero(t *testing.T) {
	top := []uint64{0xdeadbeefcafef00d, 0x0102030405060708, 0x1111222233334444, 0x5555666677778888}
	y := []uint64{0, 0}

	lo, hi := Toep127(top, 128, y)
	require.Equal(t, uint64(0), lo)
	require.Equal(t, uint64(0), hi)
}
