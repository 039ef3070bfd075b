package dpsk

import (
	"github.com/seredenko/dpsk-modem/internal/graycode"
	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// symbolTables holds the per-symbol derived tables both Modulator and
// Demodulator build once at construction time and never mutate afterward:
// the Gray-coded constellation ordering, its inverse (rank), and the phase
// shift theta(s) each symbol value advances the running phase accumulator
// by.
type symbolTables struct {
	grayTable []uint32  // grayTable[i] = decimal Gray code at constellation position i
	rank      []int     // rank[s] = i such that grayTable[i] == s
	theta     []float64 // theta[s] = phase step for symbol value s, wrapped to [0, 2π)
}

// buildSymbolTables constructs the Gray-coded phase-shift map per spec.md
// §4.1/§4.3: positions are assigned counter-clockwise around the
// constellation circle in Gray-code order so that adjacent positions differ
// by exactly one bit, and each symbol's phase step is
// (2π/M)·rank(s) + ψ, wrapped to [0, 2π).
func buildSymbolTables(c Config) (symbolTables, error) {
	grayTable, err := graycode.Decimal(c.M)
	if err != nil {
		return symbolTables{}, invalidArgumentf("building Gray-code table: %v", err)
	}

	rank := make([]int, c.M)
	for i, s := range grayTable {
		rank[s] = i
	}

	step := numerics.TwoPi / float64(c.M)
	theta := make([]float64, c.M)
	for s := 0; s < c.M; s++ {
		theta[s] = numerics.WrapPhase(step*float64(rank[s]) + c.PhaseShift)
	}

	return symbolTables{grayTable: grayTable, rank: rank, theta: theta}, nil
}

// extractSymbolsFromBits packs a raw bit sequence into symbol values and,
// for WithoutPivot, prepends the zero pivot symbol spec.md §4.3 requires so
// that differential decoding has a predecessor for the first data symbol.
func extractSymbolsFromBits(bits []bool, bitsPerSymbol int, pivot PivotMode) []uint32 {
	symbols := numerics.BitsToSymbols(bits, bitsPerSymbol)
	if pivot == WithPivot {
		return symbols
	}
	withPivot := make([]uint32, 0, len(symbols)+1)
	withPivot = append(withPivot, 0)
	withPivot = append(withPivot, symbols...)
	return withPivot
}
