// Package dpsk implements the differential phase-shift-keying modem core:
// Gray-coded symbol mapping, a modulator with classical and intermediate-
// frequency emission modes, a demodulator with I/Q extraction and 2x2
// decorrelation, and a clock-phase synchronizer. Channel coding, bit-level
// framing, and carrier-frequency recovery live above this package, in the
// protocol layer that calls it.
package dpsk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// Modulator turns a bit sequence into a real-valued sample stream by
// advancing a running phase accumulator once per symbol and emitting one
// symbol period's worth of carrier samples per step.
type Modulator struct {
	cfg    Config
	tables symbolTables

	mode        carrierMode
	usedCarrier uint32

	inPhase    func(float64) float64
	orthogonal func(float64) float64

	phase float64 // running phase accumulator φ, advanced per symbol
	log   zerolog.Logger
}

// NewModulator validates cfg, resolves its carrier mode, and builds the
// Gray-coded phase tables. The returned Modulator owns a private running
// phase accumulator seeded from cfg.Phase.
func NewModulator(cfg Config, fn ModulationFunction, log zerolog.Logger) (*Modulator, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	mode, usedCarrier, err := resolveCarrier(cfg, log)
	if err != nil {
		return nil, err
	}
	tables, err := buildSymbolTables(cfg)
	if err != nil {
		return nil, err
	}

	inPhase, orthogonal := carrierFunc(fn)
	return &Modulator{
		cfg:         cfg,
		tables:      tables,
		mode:        mode,
		usedCarrier: usedCarrier,
		inPhase:     inPhase,
		orthogonal:  orthogonal,
		phase:       numerics.WrapPhase(cfg.Phase),
		log:         log,
	}, nil
}

// Phase returns the modulator's current running phase accumulator, in
// [0, 2π).
func (m *Modulator) Phase() float64 {
	return m.phase
}

// Modulate maps bits to symbols (prepending a pivot symbol if pivot is
// WithoutPivot) and emits N=Fs/Rs real samples per symbol, advancing the
// running phase accumulator once per symbol before emission.
func (m *Modulator) Modulate(bits []bool, pivot PivotMode) ([]float64, error) {
	symbols := extractSymbolsFromBits(bits, m.cfg.bitsPerSymbol(), pivot)
	n := int(m.cfg.N())
	samples := make([]float64, 0, n*len(symbols))

	for symbolIndex, symbol := range symbols {
		if int(symbol) >= m.cfg.M {
			return nil, invalidArgumentf("symbol value %d out of range for positionality %d", symbol, m.cfg.M)
		}
		m.phase = numerics.WrapPhase(m.phase + m.tables.theta[symbol])

		switch m.mode {
		case classicalMode:
			samples = append(samples, m.classicalSymbol(symbolIndex, n)...)
		case ifMode:
			samples = append(samples, m.ifSymbol(symbolIndex, n)...)
		}
	}
	return samples, nil
}

// classicalSymbol emits one symbol window under the classical formula:
// sample[n] = A * f(ωc·tn - φ), tn measured from the absolute sample index
// so the carrier phase is continuous across symbols. validate() guarantees
// Fc is a whole multiple of Rs whenever this path runs, so the per-window
// phase contribution from the absolute index is always an exact multiple of
// 2π and the demodulator's fixed, per-symbol oscillator table stays valid
// without ever re-advancing.
func (m *Modulator) classicalSymbol(symbolIndex, n int) []float64 {
	samples := make([]float64, n)
	omega := numerics.TwoPi * float64(m.usedCarrier) / float64(m.cfg.Fs)
	base := float64(symbolIndex * n)
	for i := 0; i < n; i++ {
		t := base + float64(i)
		samples[i] = m.cfg.A * m.inPhase(omega*t-m.phase)
	}
	return samples
}

// ifSymbol emits one symbol window under the intermediate-frequency
// formula: a single-sideband mix of the IF carrier against the difference
// frequency Δω = ω_IF - ωc, so the transmitted energy lands at the nominal
// carrier Fc even though the oscillator actually runs at IF.
func (m *Modulator) ifSymbol(symbolIndex, n int) []float64 {
	samples := make([]float64, n)
	omegaIF := numerics.TwoPi * float64(m.cfg.IF) / float64(m.cfg.Fs)
	omegaC := numerics.TwoPi * float64(m.cfg.Fc) / float64(m.cfg.Fs)
	deltaOmega := omegaIF - omegaC
	base := float64(symbolIndex * n)
	for i := 0; i < n; i++ {
		t := base + float64(i)
		samples[i] = m.cfg.A*m.inPhase(omegaIF*t-m.phase)*m.orthogonal(deltaOmega*t) -
			m.cfg.A*m.orthogonal(omegaIF*t-m.phase)*m.inPhase(deltaOmega*t)
	}
	return samples
}

// ComplexModulate mirrors Modulate but returns one complex sample per
// symbol (real = A·cos(φ), imag = A·sin(φ)) instead of a full sample
// window, for callers working directly with ideal per-symbol phasors
// (test golden vectors, channel simulators).
func (m *Modulator) ComplexModulate(bits []bool, pivot PivotMode) ([]complex128, error) {
	symbols := extractSymbolsFromBits(bits, m.cfg.bitsPerSymbol(), pivot)
	out := make([]complex128, len(symbols))
	for i, symbol := range symbols {
		if int(symbol) >= m.cfg.M {
			return nil, invalidArgumentf("symbol value %d out of range for positionality %d", symbol, m.cfg.M)
		}
		m.phase = numerics.WrapPhase(m.phase + m.tables.theta[symbol])
		out[i] = complex(m.cfg.A*math.Cos(m.phase), m.cfg.A*math.Sin(m.phase))
	}
	return out, nil
}
