package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	m := New(2, 2)
	m.Put(0, 0, 1)
	m.Put(0, 1, 2)
	m.Put(1, 0, 3)
	m.Put(1, 1, 4)

	assert.Equal(t, 1.0, m.Get(0, 0))
	assert.Equal(t, 2.0, m.Get(0, 1))
	assert.Equal(t, 3.0, m.Get(1, 0))
	assert.Equal(t, 4.0, m.Get(1, 1))
}

func TestInvert_Identity(t *testing.T) {
	m := New(2, 2)
	m.Put(0, 0, 1)
	m.Put(1, 1, 1)

	inv, err := m.Invert()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, inv.Get(0, 0), 1e-9)
	assert.InDelta(t, 0.0, inv.Get(0, 1), 1e-9)
	assert.InDelta(t, 0.0, inv.Get(1, 0), 1e-9)
	assert.InDelta(t, 1.0, inv.Get(1, 1), 1e-9)
}

func TestInvert_KnownMatrix(t *testing.T) {
	// [2 0; 0 4] inverse is [0.5 0; 0 0.25]
	m := New(2, 2)
	m.Put(0, 0, 2)
	m.Put(1, 1, 4)

	inv, err := m.Invert()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, inv.Get(0, 0), 1e-9)
	assert.InDelta(t, 0.25, inv.Get(1, 1), 1e-9)
}

func TestInvert_Singular(t *testing.T) {
	m := New(2, 2) // all-zero is singular
	_, err := m.Invert()
	require.Error(t, err)
}

func TestMul(t *testing.T) {
	a := New(2, 2)
	a.Put(0, 0, 1)
	a.Put(0, 1, 2)
	a.Put(1, 0, 3)
	a.Put(1, 1, 4)

	identity := New(2, 2)
	identity.Put(0, 0, 1)
	identity.Put(1, 1, 1)

	result, err := a.Mul(identity)
	require.NoError(t, err)
	assert.Equal(t, a.Get(0, 0), result.Get(0, 0))
	assert.Equal(t, a.Get(1, 1), result.Get(1, 1))
}

func TestMul_DimensionMismatch(t *testing.T) {
	a := New(2, 3)
	b := New(2, 2)
	_, err := a.Mul(b)
	require.Error(t, err)
}

func TestMulVector(t *testing.T) {
	m := New(2, 2)
	m.Put(0, 0, 2)
	m.Put(1, 1, 3)

	x, y := m.MulVector(5, 7)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 21.0, y)
}
