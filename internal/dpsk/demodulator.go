package dpsk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/seredenko/dpsk-modem/internal/matrix"
	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// Demodulator recovers symbols from a real-valued sample stream by
// extracting an I/Q pair per symbol window against cached oscillator
// tables, correcting for non-orthogonal I/Q bases with a decorrelation
// matrix when the carrier does not divide the sampling frequency evenly,
// and decoding the differential phase step between consecutive symbols
// into a sector of the Gray-coded constellation.
type Demodulator struct {
	cfg    Config
	tables symbolTables

	mode        carrierMode
	usedCarrier uint32

	inPhase    func(float64) float64
	orthogonal func(float64) float64

	n int // samples per symbol, cached from cfg.N()

	// sectorBounds holds M+1 ascending boundaries; sectorBounds[i] is the
	// lower edge of sector i, sectorBounds[M] = sectorBounds[0] + 2π.
	sectorBounds []float64

	// needsReadvance is true when Fs mod Fc != 0: the oscillator reference
	// does not complete a whole number of cycles per symbol window, so its
	// phase must be advanced and its tables (and decorrelation matrix)
	// rebuilt between symbols to stay coherent.
	needsReadvance        bool
	oscillatorPhase       float64
	phaseAdvancePerWindow float64

	cosTab, sinTab []float64
	decorrelation  *matrix.Matrix // nil when the I/Q basis is already orthogonal

	log zerolog.Logger
}

// NewDemodulator validates cfg, resolves its carrier mode, builds the
// Gray-coded sector table, and generates the initial oscillator tables (and
// decorrelation matrix, if needed).
func NewDemodulator(cfg Config, fn ModulationFunction, log zerolog.Logger) (*Demodulator, error) {
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

	// The IF single-sideband mixing formula algebraically reduces to a
	// signal at the nominal carrier Fc, so extraction always references Fc
	// in that mode; usedCarrier only diverges from Fc in the classical
	// surrogate-fallback case, where the surrogate is what was actually
	// transmitted.
	extractionCarrier := usedCarrier
	if mode == ifMode {
		extractionCarrier = cfg.Fc
	}

	inPhase, orthogonal := carrierFunc(fn)
	d := &Demodulator{
		cfg:             cfg,
		tables:          tables,
		mode:            mode,
		usedCarrier:     extractionCarrier,
		inPhase:         inPhase,
		orthogonal:      orthogonal,
		n:               int(cfg.N()),
		needsReadvance:  cfg.Fs%extractionCarrier != 0,
		oscillatorPhase: numerics.WrapPhase(cfg.Phase),
		log:             log,
	}
	d.sectorBounds = d.buildSectorBounds()
	d.phaseAdvancePerWindow = numerics.TwoPi * float64(extractionCarrier) / float64(cfg.Fs) * float64(d.n)
	d.refreshOscillator()
	return d, nil
}

// buildSectorBounds computes the M+1 ascending decision boundaries
// B[i] = B0 + i*(2π/M), B0 = (π/M) + ψ wrapped to [0, 2π), plus the
// wraparound boundary B[M] = B[0] + 2π.
func (d *Demodulator) buildSectorBounds() []float64 {
	m := d.cfg.M
	sectorWidth := numerics.TwoPi / float64(m)
	b0 := numerics.WrapPhase(sectorWidth/2 + d.cfg.PhaseShift)

	bounds := make([]float64, m+1)
	for i := 0; i <= m; i++ {
		bounds[i] = b0 + float64(i)*sectorWidth
	}
	return bounds
}

// refreshOscillator (re)generates the cached oscillator tables at the
// demodulator's current reference phase and, when the I/Q basis is
// non-orthogonal, the decorrelation matrix built from their Gram matrix.
func (d *Demodulator) refreshOscillator() {
	omega := numerics.TwoPi * float64(d.usedCarrier) / float64(d.cfg.Fs)
	d.cosTab = make([]float64, d.n)
	d.sinTab = make([]float64, d.n)
	for i := 0; i < d.n; i++ {
		arg := omega*float64(i) + d.oscillatorPhase
		d.cosTab[i] = math.Cos(arg)
		d.sinTab[i] = math.Sin(arg)
	}

	if !d.needsReadvance {
		d.decorrelation = nil
		return
	}

	var cc, cs, ss float64
	for i := 0; i < d.n; i++ {
		cc += d.cosTab[i] * d.cosTab[i]
		cs += d.cosTab[i] * d.sinTab[i]
		ss += d.sinTab[i] * d.sinTab[i]
	}
	scale := 2.0 / float64(d.n)
	gram := matrix.New(2, 2)
	gram.Put(0, 0, scale*cc)
	gram.Put(0, 1, scale*cs)
	gram.Put(1, 0, scale*cs)
	gram.Put(1, 1, scale*ss)

	inv, err := gram.Invert()
	if err != nil {
		d.log.Warn().Err(err).Msg("decorrelation matrix is singular; falling back to identity")
		d.decorrelation = nil
		return
	}
	d.decorrelation = inv
}

// extractIQ dot-products one symbol window against the cached oscillator
// tables to recover its (I, Q) pair. window must be exactly n samples; a
// mismatch is an internal contract violation, not a caller input error,
// since callers are expected to slice Demodulate's input into fixed-size
// windows themselves.
func (d *Demodulator) extractIQ(window []float64) (complex128, error) {
	if len(window) != d.n {
		return 0, logicErrorf("symbol window length %d does not match oscillator table length %d", len(window), d.n)
	}
	var i, q float64
	for idx, sample := range window {
		i += sample * d.cosTab[idx]
		q += sample * d.sinTab[idx]
	}
	scale := 2.0 / float64(d.n)
	i *= scale
	q *= scale
	if d.decorrelation != nil {
		i, q = d.decorrelation.MulVector(i, q)
	}
	return complex(i, q), nil
}

// extractPhase returns the absolute phase of an I/Q pair, wrapped to
// [0, 2π).
func extractPhase(iq complex128) float64 {
	return numerics.WrapPhase(math.Atan2(imag(iq), real(iq)))
}

// defineSymbol maps a phase difference to its constellation position via a
// single integer division, then back to the Gray-coded symbol value one
// sector beyond (since the first sector holds the all-zero phase step,
// symbol values are sector index + 1 mod M). defineSymbolLinearScan is the
// correctness oracle this formula must always agree with.
func (d *Demodulator) defineSymbol(deltaPhi float64) uint32 {
	sectorWidth := numerics.TwoPi / float64(d.cfg.M)
	relative := numerics.WrapPhase(deltaPhi - d.sectorBounds[0])
	sector := int(relative / sectorWidth)
	if sector >= d.cfg.M {
		sector = d.cfg.M - 1
	}
	return d.tables.grayTable[(sector+1)%d.cfg.M]
}

// defineSymbolLinearScan is the O(M) reference implementation of
// defineSymbol: it scans the sector table directly instead of dividing.
// Kept for use as a test oracle, not on the hot decode path.
func (d *Demodulator) defineSymbolLinearScan(deltaPhi float64) uint32 {
	m := d.cfg.M
	for i := 0; i < m; i++ {
		lower := d.sectorBounds[i]
		upper := d.sectorBounds[i+1]
		candidate := deltaPhi
		if candidate < lower {
			candidate += numerics.TwoPi
		}
		if candidate >= lower && candidate < upper {
			return d.tables.grayTable[(i+1)%m]
		}
	}
	return d.tables.grayTable[0]
}

// Demodulate slices samples into consecutive N-sample windows (the first is
// the pivot, consumed but never emitted as a symbol), recovers each
// window's absolute phase, differentiates consecutive phases, and decodes
// each difference into a symbol. len(samples) must be a positive multiple
// of N.
func (d *Demodulator) Demodulate(samples []float64) ([]uint32, error) {
	if len(samples) == 0 || len(samples)%d.n != 0 {
		return nil, invalidArgumentf("sample count %d is not a positive multiple of window length %d", len(samples), d.n)
	}
	numWindows := len(samples) / d.n
	if numWindows < 1 {
		return nil, nil
	}

	pivotIQ, err := d.extractIQ(samples[0:d.n])
	if err != nil {
		return nil, err
	}
	prevPhase := extractPhase(pivotIQ)

	symbols := make([]uint32, 0, numWindows-1)
	for w := 1; w < numWindows; w++ {
		if d.needsReadvance {
			d.oscillatorPhase = numerics.WrapPhase(d.oscillatorPhase + d.phaseAdvancePerWindow)
			d.refreshOscillator()
		}
		window := samples[w*d.n : (w+1)*d.n]
		iq, err := d.extractIQ(window)
		if err != nil {
			return nil, err
		}
		phase := extractPhase(iq)
		deltaPhi := numerics.WrapPhase(phase - prevPhase)
		symbols = append(symbols, d.defineSymbol(deltaPhi))
		prevPhase = phase
	}
	return symbols, nil
}

// DemodulateIQ mirrors Demodulate but starts from ideal per-symbol phasors
// (as produced by Modulator.ComplexModulate) instead of raw sample
// windows, skipping the dot-product extraction step while still applying
// decorrelation and sector decoding.
func (d *Demodulator) DemodulateIQ(iq []complex128) ([]uint32, error) {
	if len(iq) == 0 {
		return nil, invalidArgumentf("need at least one (pivot) symbol")
	}
	apply := func(sample complex128) complex128 {
		if d.decorrelation == nil {
			return sample
		}
		i, q := d.decorrelation.MulVector(real(sample), imag(sample))
		return complex(i, q)
	}

	prevPhase := extractPhase(apply(iq[0]))
	symbols := make([]uint32, 0, len(iq)-1)
	for w := 1; w < len(iq); w++ {
		phase := extractPhase(apply(iq[w]))
		deltaPhi := numerics.WrapPhase(phase - prevPhase)
		symbols = append(symbols, d.defineSymbol(deltaPhi))
		prevPhase = phase
	}
	return symbols, nil
}
