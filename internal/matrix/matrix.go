// Package matrix implements the small matrix utility spec.md §6 calls an
// external dependency: construction, element access, inversion, and
// multiplication for compatible dimensions, plus a textual formatter. It is
// a thin wrapper over gonum.org/v1/gonum/mat rather than a hand-rolled
// implementation, matching the numerical-computing stack the rest of the
// retrieved corpus (madpsy-ka9q_ubersdr) already pulls in for DSP work.
//
// The DPSK demodulator's only consumer of this package needs a 2×2
// decorrelation matrix, but the interface itself is not limited to 2×2.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a real-valued matrix of fixed dimensions.
type Matrix struct {
	dense *mat.Dense
}

// New creates a rows×cols zero matrix.
func New(rows, cols int) *Matrix {
	return &Matrix{dense: mat.NewDense(rows, cols, nil)}
}

// fromDense wraps an existing gonum matrix without copying.
func fromDense(d *mat.Dense) *Matrix {
	return &Matrix{dense: d}
}

// Put sets the value at (r, c).
func (m *Matrix) Put(r, c int, v float64) {
	m.dense.Set(r, c, v)
}

// Get returns the value at (r, c).
func (m *Matrix) Get(r, c int) float64 {
	return m.dense.At(r, c)
}

// Dims returns (rows, cols).
func (m *Matrix) Dims() (int, int) {
	return m.dense.Dims()
}

// Invert returns the inverse of m, or an error if m is singular.
func (m *Matrix) Invert() (*Matrix, error) {
	rows, cols := m.dense.Dims()
	if rows != cols {
		return nil, fmt.Errorf("matrix: cannot invert non-square %dx%d matrix", rows, cols)
	}

	inv := mat.NewDense(rows, cols, nil)
	if err := inv.Inverse(m.dense); err != nil {
		return nil, fmt.Errorf("matrix: singular, cannot invert: %w", err)
	}
	return fromDense(inv), nil
}

// Mul multiplies m by other, returning a new matrix. Dimensions must be
// compatible (m.cols == other.rows).
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	mRows, mCols := m.dense.Dims()
	oRows, oCols := other.dense.Dims()
	if mCols != oRows {
		return nil, fmt.Errorf("matrix: incompatible dimensions for multiplication: %dx%d * %dx%d", mRows, mCols, oRows, oCols)
	}

	result := mat.NewDense(mRows, oCols, nil)
	result.Mul(m.dense, other.dense)
	return fromDense(result), nil
}

// MulVector multiplies m (must be square) by the column vector (x, y) and
// returns the resulting (x', y'). It is the fast path the decorrelation
// step in internal/dpsk uses per symbol, avoiding an allocation-heavy
// generic Mul for the common 2×1 case.
func (m *Matrix) MulVector(x, y float64) (float64, float64) {
	rows, cols := m.dense.Dims()
	if rows != 2 || cols != 2 {
		panic("matrix: MulVector requires a 2x2 matrix")
	}
	return m.dense.At(0, 0)*x + m.dense.At(0, 1)*y,
		m.dense.At(1, 0)*x + m.dense.At(1, 1)*y
}

// String formats the matrix for diagnostics/logging.
func (m *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.dense, mat.Prefix(""), mat.Squeeze()))
}
