package dpsk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// ModulationFunction selects the carrier function used for the in-phase
// branch of modulation and demodulation; the orthogonal branch follows from
// it automatically (cos pairs with sin and vice versa).
type ModulationFunction int

const (
	// Sin uses sin as the in-phase carrier function, cos as its orthogonal
	// counterpart.
	Sin ModulationFunction = iota
	// Cos uses cos as the in-phase carrier function, sin as its orthogonal
	// counterpart.
	Cos
)

// PivotMode selects whether a known reference symbol is prepended ahead of
// the data symbols so that differential decoding has a predecessor for the
// first data symbol.
type PivotMode int

const (
	// WithPivot treats the first symbol packed from bits as the pivot symbol.
	WithPivot PivotMode = iota
	// WithoutPivot prepends an implicit zero pivot symbol ahead of bits.
	WithoutPivot
)

// carrierMode records which of the two sample-emission formulas a Config
// resolved to at construction time.
type carrierMode int

const (
	classicalMode carrierMode = iota
	ifMode
)

// Config holds the immutable, validated parameters shared by a Modulator and
// a Demodulator built against the same link. Fields mirror spec.md §3
// one-to-one; the running phase accumulator is deliberately not part of this
// struct — it is per-instance runtime state owned by Modulator/Demodulator,
// not shared configuration.
type Config struct {
	// Fs is the sampling frequency in Hz.
	Fs uint32
	// Rs is the symbol rate in symbols/second. Fs must be an integer
	// multiple of Rs.
	Rs uint32
	// M is the constellation positionality (number of symbols). Must be a
	// power of two >= 2.
	M int
	// Fc is the nominal carrier frequency in Hz. Must satisfy 4*Fc <= Fs.
	Fc uint32
	// IF is the intermediate frequency in Hz used when Fs does not divide
	// evenly by Fc. Zero means "unset": the modulator falls back to the
	// classical single-carrier formula, or to AllowCarrierFallback if even
	// that fails.
	IF uint32
	// A is the carrier amplitude. Must be positive.
	A float64
	// Phase is the initial value of the running phase accumulator φ₀.
	Phase float64
	// PhaseShift is the constellation phase shift ψ applied to every symbol
	// phase mapping.
	PhaseShift float64
	// AllowCarrierFallback opts in to substituting the nearest frequency
	// below Fc that divides Fs and is a whole multiple of Rs, when neither Fc
	// nor IF divides Fs evenly.
	// Off by default: silently drifting away from the requested carrier is
	// surprising behavior a caller must ask for explicitly.
	AllowCarrierFallback bool
}

// N returns the number of samples per symbol, Fs/Rs.
func (c Config) N() uint32 {
	return c.Fs / c.Rs
}

// bitsPerSymbol returns log2(M).
func (c Config) bitsPerSymbol() int {
	return numerics.NumBits(c.M)
}

// BitsPerSymbol returns log2(M), the number of bits each symbol carries.
// Exported for callers outside this package that need to pack/unpack bit
// streams against the same symbol boundaries (the protocol layer's framing,
// for instance).
func (c Config) BitsPerSymbol() int {
	return c.bitsPerSymbol()
}

// validate checks the invariants spec.md §3 and §4.3 require of a Config,
// independent of which carrier mode it will resolve to.
func validate(c Config) error {
	if c.Fs == 0 {
		return invalidArgumentf("sampling frequency must be positive")
	}
	if c.Rs == 0 {
		return invalidArgumentf("symbol rate must be positive")
	}
	if c.Fs%c.Rs != 0 {
		return invalidArgumentf("sampling frequency %d must be a multiple of symbol rate %d", c.Fs, c.Rs)
	}
	if !numerics.IsPowerOfTwo(c.M) {
		return invalidArgumentf("positionality %d must be a power of two", c.M)
	}
	if c.M < 2 {
		return invalidArgumentf("positionality must be at least 2")
	}
	if c.Fc == 0 {
		return invalidArgumentf("carrier frequency must be positive")
	}
	if 4*c.Fc > c.Fs {
		return invalidArgumentf("carrier frequency %d violates Nyquist bound against sampling frequency %d", c.Fc, c.Fs)
	}
	if c.A <= 0 {
		return invalidArgumentf("amplitude must be positive")
	}
	if c.IF != 0 && 4*c.IF > c.Fs {
		return invalidArgumentf("intermediate frequency %d violates Nyquist bound against sampling frequency %d", c.IF, c.Fs)
	}
	// When Fc divides Fs exactly, resolveCarrier takes the classical formula,
	// which correlates every symbol window against a fixed oscillator table
	// built once at construction (see demodulator.go's needsReadvance). That
	// table is only valid if each symbol spans a whole number of carrier
	// cycles; otherwise the per-window phase drifts by a fraction of a cycle
	// that the modulator's absolute sample clock tracks but the demodulator's
	// fixed table does not, and the I/Q basis stops being orthogonal.
	if c.Fs%c.Fc == 0 && c.Fc%c.Rs != 0 {
		return invalidArgumentf("carrier frequency %d must be a multiple of symbol rate %d for classical mode (whole carrier cycles per symbol)", c.Fc, c.Rs)
	}
	return nil
}

// resolveCarrier determines which sample-emission formula a Config uses and
// which frequency actually drives it, per spec.md §4.3's edge-case
// ordering: prefer the classical formula when Fc divides Fs exactly, fall
// back to the IF formula when IF is configured and divides Fs, and only
// then consider the explicit-opt-in surrogate-carrier fallback.
func resolveCarrier(c Config, log zerolog.Logger) (mode carrierMode, usedFreq uint32, err error) {
	if c.Fs%c.Fc == 0 {
		return classicalMode, c.Fc, nil
	}
	if c.IF != 0 && c.Fs%c.IF == 0 {
		return ifMode, c.IF, nil
	}
	if c.AllowCarrierFallback {
		surrogate := numerics.FindNearestCarrierMultiple(c.Fc, c.Fs, c.Rs, numerics.Less)
		if surrogate == 0 {
			return classicalMode, 0, notSupportedf("no carrier frequency <= %d divides sampling frequency %d as a multiple of symbol rate %d", c.Fc, c.Fs, c.Rs)
		}
		log.Warn().
			Uint32("requested_fc", c.Fc).
			Uint32("surrogate_fc", surrogate).
			Msg("carrier frequency does not divide sampling frequency; substituting nearest surrogate")
		return classicalMode, surrogate, nil
	}
	return classicalMode, 0, notSupportedf(
		"carrier frequency %d and intermediate frequency %d neither divide sampling frequency %d; set AllowCarrierFallback to substitute a surrogate",
		c.Fc, c.IF, c.Fs)
}

// carrierFunc resolves a ModulationFunction into its in-phase and orthogonal
// sample functions, branching once at construction instead of per sample.
func carrierFunc(fn ModulationFunction) (inPhase, orthogonal func(float64) float64) {
	if fn == Cos {
		return math.Cos, math.Sin
	}
	return math.Sin, math.Cos
}
