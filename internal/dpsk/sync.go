package dpsk

import (
	"math"

	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// SyncConfig configures a ClockSynchronizer.
type SyncConfig struct {
	// Fs is the sampling frequency in Hz.
	Fs uint32
	// Rs is the symbol rate in symbols/second; N = Fs/Rs is both the
	// modulus the estimated offset is reported in and the window the
	// candidate unit vectors are folded into.
	Rs uint32
	// Fc is the carrier frequency in Hz the linear-recurrence predictor is
	// built from.
	Fc uint32
	// Threshold is τ, the maximum allowed deviation between a sample and
	// its recurrence-predicted value before the sample is treated as a
	// synchronization candidate.
	Threshold float64
	// MaxCandidates is K, the budget of candidates collected before the
	// vector average is taken. Fewer than K may be collected if the input
	// is short or quiet; that is not a failure.
	MaxCandidates int
	// BufferCapacity bounds the internal ring buffer FindClockPhaseStreaming
	// accumulates samples into. Zero means unbounded.
	BufferCapacity int
}

// ClockSynchronizer estimates the sample offset, within one symbol period,
// at which a received signal's clock is phase-aligned. It detects
// candidate positions by checking each sample against the value a pure
// sinusoid's linear recurrence would have predicted, then resolves the
// final estimate by averaging the candidates' positions as unit vectors on
// the circle and taking the argument of their sum — a maximum-likelihood
// estimate that tolerates large outliers better than averaging raw sample
// indices would.
type ClockSynchronizer struct {
	cfg  SyncConfig
	n    int // samples per symbol, cached from cfg.Fs/cfg.Rs
	ring *sampleRing
}

// NewClockSynchronizer validates cfg and constructs a synchronizer with its
// own ring buffer.
func NewClockSynchronizer(cfg SyncConfig) (*ClockSynchronizer, error) {
	if cfg.Fs == 0 || cfg.Rs == 0 {
		return nil, invalidArgumentf("sampling frequency and symbol rate must be positive")
	}
	if cfg.Fs%cfg.Rs != 0 {
		return nil, invalidArgumentf("sampling frequency %d must be a multiple of symbol rate %d", cfg.Fs, cfg.Rs)
	}
	if cfg.Fc == 0 {
		return nil, invalidArgumentf("carrier frequency must be positive")
	}
	if cfg.MaxCandidates <= 0 {
		return nil, invalidArgumentf("candidate budget must be positive")
	}
	if cfg.Threshold <= 0 {
		return nil, invalidArgumentf("candidate threshold must be positive")
	}

	return &ClockSynchronizer{
		cfg:  cfg,
		n:    int(cfg.Fs / cfg.Rs),
		ring: newSampleRing(cfg.BufferCapacity),
	}, nil
}

// FindClockPhase estimates the clock-phase offset, in [0, N) samples, of
// samples in a single pass: it does not touch the synchronizer's internal
// ring buffer, so it is safe to call repeatedly against independent
// buffers. Use FindClockPhaseStreaming for incremental, buffered use.
func (s *ClockSynchronizer) FindClockPhase(samples []float64) (int, error) {
	if len(samples) < s.n {
		return 0, invalidArgumentf("need at least %d samples, got %d", s.n, len(samples))
	}

	coeff := 2 * math.Cos(numerics.TwoPi*float64(s.cfg.Fc)/float64(s.cfg.Fs))

	var sum complex128
	candidates := 0
	for i := 2; i < len(samples) && candidates < s.cfg.MaxCandidates; i++ {
		predicted := coeff*samples[i-1] - samples[i-2]
		if math.Abs(predicted-samples[i]) <= s.cfg.Threshold {
			continue
		}
		angle := numerics.TwoPi * float64(i%s.n) / float64(s.n)
		sum += complex(math.Cos(angle), math.Sin(angle))
		candidates++
	}

	if candidates == 0 {
		return 0, nil
	}

	arg := numerics.WrapPhase(math.Atan2(imag(sum), real(sum)))
	offset := int(math.Round(arg * float64(s.n) / numerics.TwoPi))
	return offset % s.n, nil
}

// FindClockPhaseStreaming appends newSamples to the synchronizer's internal
// ring buffer and re-estimates the clock-phase offset over the buffer's
// full contents. This is the entry point for callers feeding samples
// incrementally as they arrive off a live input stream. While fewer than N
// samples are buffered it returns ErrInvalidArgument, as FindClockPhase does.
func (s *ClockSynchronizer) FindClockPhaseStreaming(newSamples []float64) (int, error) {
	s.ring.Push(newSamples)
	return s.FindClockPhase(s.ring.Snapshot())
}

// Reset discards all samples buffered by FindClockPhaseStreaming.
func (s *ClockSynchronizer) Reset() {
	s.ring = newSampleRing(s.cfg.BufferCapacity)
}
