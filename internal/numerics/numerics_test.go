package numerics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[int]bool{
		0: false, 1: true, 2: true, 3: false, 4: true,
		5: false, 64: true, 63: false, -4: false,
	}
	for value, want := range cases {
		assert.Equalf(t, want, IsPowerOfTwo(value), "value=%d", value)
	}
}

func TestBinToDec(t *testing.T) {
	require.Equal(t, uint32(0), BinToDec([]bool{false, false}))
	require.Equal(t, uint32(3), BinToDec([]bool{true, true}))
	require.Equal(t, uint32(5), BinToDec([]bool{true, false, true}))
}

func TestBitsToSymbols_EmptyInput(t *testing.T) {
	assert.Nil(t, BitsToSymbols(nil, 2))
}

func TestBitsToSymbols_ExactMultiple(t *testing.T) {
	bits := []bool{true, true, false, false}
	symbols := BitsToSymbols(bits, 2)
	require.Equal(t, []uint32{3, 0}, symbols)
}

func TestBitsToSymbols_LeadingPad(t *testing.T) {
	// 5 bits, 2 bits/symbol -> first symbol padded with one leading zero,
	// not the last.
	bits := []bool{true, true, true, false, true} // 1 11 01 -> [0]1 11 01 split: pad front
	symbols := BitsToSymbols(bits, 2)
	// padded: 0 1 1 1 0 1 -> 01 11 01 -> 1,3,1
	require.Equal(t, []uint32{1, 3, 1}, symbols)
}

func TestSymbolsToBits_RoundTripsWithBitsToSymbols(t *testing.T) {
	bits := []bool{true, true, false, false, true, false}
	symbols := BitsToSymbols(bits, 2)
	require.Equal(t, bits, SymbolsToBits(symbols, 2))
}

func TestSymbolsToBits_MSBFirst(t *testing.T) {
	require.Equal(t, []bool{true, false, false, true}, SymbolsToBits([]uint32{2, 1}, 2))
}

func TestWrapPhase(t *testing.T) {
	for _, phase := range []float64{0, 1.5, TwoPi, -1.0, 100.3, -100.3} {
		wrapped := WrapPhase(phase)
		assert.GreaterOrEqual(t, wrapped, 0.0)
		assert.Less(t, wrapped, TwoPi)

		diff := wrapped - phase
		turns := diff / TwoPi
		assert.InDelta(t, math.Round(turns), turns, 1e-6)
	}
}

func TestIsSameFloat(t *testing.T) {
	assert.True(t, IsSameFloat(1.0, 1.0000001))
	assert.False(t, IsSameFloat(1.0, 1.001))
	assert.True(t, IsSameFloat(1.0, 1.05, 0.1))
}

func TestFindNearestMultiple(t *testing.T) {
	require.Equal(t, uint32(1600), FindNearestMultiple(1800, 19200, Less))
	require.Equal(t, uint32(1600), FindNearestMultiple(1900, 19200, Less))
	require.Equal(t, uint32(0), FindNearestMultiple(5, 0, Less))
}

func TestFindNearestCarrierMultiple(t *testing.T) {
	require.Equal(t, uint32(3000), FindNearestCarrierMultiple(3500, 48000, 1000, Less))
	require.Equal(t, uint32(0), FindNearestCarrierMultiple(700, 48000, 1000, Less))
	require.Equal(t, uint32(4000), FindNearestCarrierMultiple(3500, 48000, 1000, More))
	require.Equal(t, uint32(0), FindNearestCarrierMultiple(5, 0, 1, Less))
	require.Equal(t, uint32(0), FindNearestCarrierMultiple(5, 10, 0, Less))
}
