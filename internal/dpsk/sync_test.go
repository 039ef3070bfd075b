package dpsk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(fs, fc uint32, numSamples, offset int, amplitude float64) []float64 {
	samples := make([]float64, numSamples)
	omega := 2 * math.Pi * float64(fc) / float64(fs)
	for i := 0; i < numSamples; i++ {
		samples[i] = amplitude * math.Sin(omega*float64(i+offset))
	}
	return samples
}

// circularDistance is the minimal distance between a and b on a ring of
// size n, accounting for wraparound on either side.
func circularDistance(a, b, n int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if n-d < d {
		return n - d
	}
	return d
}

func TestFindClockPhase_ZeroPrefixIdentity(t *testing.T) {
	cfg := SyncConfig{Fs: 40000, Rs: 80, Fc: 1000, Threshold: 1e-6, MaxCandidates: 32}
	sync, err := NewClockSynchronizer(cfg)
	require.NoError(t, err)

	prefixLen := 100
	prefix := make([]float64, prefixLen)
	// Start the tone at a non-zero phase so the zero-prefix boundary is a
	// genuine recurrence violation rather than a coincidental zero-crossing.
	signal := sineWave(cfg.Fs, cfg.Fc, 2000, 37, 1.0)
	samples := append(prefix, signal...)

	n := int(cfg.Fs / cfg.Rs)
	offset, err := sync.FindClockPhase(samples)
	require.NoError(t, err)
	assert.LessOrEqualf(t, circularDistance(offset, prefixLen, n), 1,
		"offset %d too far from expected prefix length %d (mod %d)", offset, prefixLen, n)
}

func TestFindClockPhase_ShortInputIsInvalidArgument(t *testing.T) {
	cfg := SyncConfig{Fs: 40000, Rs: 8000, Fc: 1000, Threshold: 1e-6, MaxCandidates: 32}
	sync, err := NewClockSynchronizer(cfg)
	require.NoError(t, err)

	_, err = sync.FindClockPhase(make([]float64, 2))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFindClockPhase_PureToneHasNoCandidates(t *testing.T) {
	cfg := SyncConfig{Fs: 40000, Rs: 80, Fc: 1000, Threshold: 1e-6, MaxCandidates: 32}
	sync, err := NewClockSynchronizer(cfg)
	require.NoError(t, err)

	signal := sineWave(cfg.Fs, cfg.Fc, 2000, 0, 1.0)
	offset, err := sync.FindClockPhase(signal)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
}

func TestFindClockPhaseStreaming_AccumulatesAcrossCalls(t *testing.T) {
	cfg := SyncConfig{Fs: 40000, Rs: 80, Fc: 1000, Threshold: 1e-6, MaxCandidates: 32, BufferCapacity: 0}
	sync, err := NewClockSynchronizer(cfg)
	require.NoError(t, err)

	prefixLen := 60
	prefix := make([]float64, prefixLen)
	signal := sineWave(cfg.Fs, cfg.Fc, 2000, 37, 1.0)

	// Until at least N samples are buffered there is nothing to estimate.
	_, err = sync.FindClockPhaseStreaming(prefix[:30])
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = sync.FindClockPhaseStreaming(prefix[30:])
	require.ErrorIs(t, err, ErrInvalidArgument)
	offset, err := sync.FindClockPhaseStreaming(signal)
	require.NoError(t, err)

	n := int(cfg.Fs / cfg.Rs)
	assert.LessOrEqualf(t, circularDistance(offset, prefixLen, n), 1,
		"offset %d too far from expected prefix length %d (mod %d)", offset, prefixLen, n)
}

func TestNewClockSynchronizer_RejectsNonDividingRate(t *testing.T) {
	_, err := NewClockSynchronizer(SyncConfig{Fs: 40000, Rs: 777, Fc: 1000, Threshold: 1e-6, MaxCandidates: 4})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
