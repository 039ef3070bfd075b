package graycode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hammingDistance(a, b []bool) int {
	dist := 0
	for i := range a {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist
}

func TestGenerate_SinglePosition(t *testing.T) {
	codes, err := Generate(1)
	require.NoError(t, err)
	require.Equal(t, [][]bool{{false}}, codes)
}

func TestGenerate_NotPowerOfTwo(t *testing.T) {
	_, err := Generate(6)
	require.Error(t, err)
	var target *ErrInvalidNumCodes
	require.ErrorAs(t, err, &target)
}

func TestGenerate_Adjacency(t *testing.T) {
	for _, m := range []int{2, 4, 8, 16, 32} {
		codes, err := Generate(m)
		require.NoError(t, err)
		require.Len(t, codes, m)

		for i := 0; i < m; i++ {
			next := codes[(i+1)%m]
			assert.Equalf(t, 1, hammingDistance(codes[i], next),
				"M=%d: Hamming distance between G[%d] and G[%d]", m, i, (i+1)%m)
		}
	}
}

func TestDecimal_IsPermutation(t *testing.T) {
	for _, m := range []int{2, 4, 8, 16} {
		values, err := Decimal(m)
		require.NoError(t, err)
		require.Equal(t, 0, int(values[0]))

		seen := make(map[uint32]bool, m)
		for _, v := range values {
			assert.False(t, seen[v], "duplicate value %d", v)
			seen[v] = true
			assert.Less(t, v, uint32(m))
		}
		assert.Len(t, seen, m)
	}
}

func TestRank_RoundTrip(t *testing.T) {
	table, err := Decimal(8)
	require.NoError(t, err)

	for i, v := range table {
		assert.Equal(t, i, Rank(table, v))
	}
	assert.Equal(t, -1, Rank(table, 99))
}
