package dpsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSymbolTables_UniquePhasePerSymbol(t *testing.T) {
	cfg := baseConfig()
	cfg.M = 8
	tables, err := buildSymbolTables(cfg)
	require.NoError(t, err)

	seen := make(map[float64]bool, cfg.M)
	for _, theta := range tables.theta {
		assert.False(t, seen[theta], "duplicate phase step %v", theta)
		seen[theta] = true
	}
	assert.Len(t, seen, cfg.M)
}

func TestBuildSymbolTables_PhaseShiftOffsetsEveryStep(t *testing.T) {
	cfgZero := baseConfig()
	cfgZero.M = 4
	zero, err := buildSymbolTables(cfgZero)
	require.NoError(t, err)

	cfgShifted := cfgZero
	cfgShifted.PhaseShift = 1.0
	shifted, err := buildSymbolTables(cfgShifted)
	require.NoError(t, err)

	for s := range zero.theta {
		assert.InDelta(t, zero.theta[s], shifted.theta[s]-1.0, 1e-9)
	}
}

func TestExtractSymbolsFromBits_WithoutPivotPrependsZero(t *testing.T) {
	bits := []bool{true, false, true, true} // two 2-bit symbols: 10, 11
	symbols := extractSymbolsFromBits(bits, 2, WithoutPivot)
	require.Equal(t, []uint32{0, 2, 3}, symbols)
}

func TestExtractSymbolsFromBits_WithoutPivotEmptyInput(t *testing.T) {
	symbols := extractSymbolsFromBits(nil, 2, WithoutPivot)
	require.Equal(t, []uint32{0}, symbols)
}

func TestExtractSymbolsFromBits_WithPivotPassesThrough(t *testing.T) {
	bits := []bool{false, false, true, false} // symbols 00, 10
	symbols := extractSymbolsFromBits(bits, 2, WithPivot)
	require.Equal(t, []uint32{0, 2}, symbols)
}
