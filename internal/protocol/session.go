package protocol

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seredenko/dpsk-modem/internal/audio"
	"github.com/seredenko/dpsk-modem/internal/dpsk"
	"github.com/seredenko/dpsk-modem/internal/dsp"
	"github.com/seredenko/dpsk-modem/internal/fec"
	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// SessionMode represents the operating mode.
type SessionMode int

const (
	ModeSend SessionMode = iota
	ModeReceive
	ModeDuplex
)

// SessionStatus represents the session state.
type SessionStatus int

const (
	StatusDisconnected SessionStatus = iota
	StatusConnecting
	StatusConnected
	StatusTransferring
	StatusCompleted
	StatusError
)

// String returns the status name.
func (s SessionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusTransferring:
		return "transferring"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SessionEvent is sent to listeners when session state changes.
type SessionEvent struct {
	Status   SessionStatus
	Message  string
	Progress float64 // 0.0 to 1.0
	Error    error
}

// preambleSymbols is the number of zero-bit (pivot) symbols transmitted
// ahead of every frame's data symbols, giving the receiver's clock
// synchronizer a stable run of known phase to lock onto before the framed
// payload begins.
const preambleSymbols = 16

// Session manages a DPSK audio modem communication session. Each session
// carries a unique ID (attached to every log line it writes, for
// correlating concurrent sessions) and owns the modulator,
// demodulator, and clock synchronizer built from a single shared
// dpsk.Config.
type Session struct {
	id string

	audioIO     *audio.AudioIO
	modulator   *dpsk.Modulator
	demodulator *dpsk.Demodulator
	syncer      *dpsk.ClockSynchronizer
	rsEncoder   *fec.RSEncoder
	transport   *Transport
	cfg         dpsk.Config
	mode        SessionMode

	status    SessionStatus
	eventChan chan SessionEvent

	hasInput  bool
	hasOutput bool

	log zerolog.Logger
}

// NewSession creates a new communication session for cfg (built once,
// shared by the session's modulator, demodulator, and synchronizer).
// dataShards/parityShards configure the outer Reed-Solomon layer.
func NewSession(cfg dpsk.Config, syncCfg dpsk.SyncConfig, dataShards, parityShards int, mode SessionMode, log zerolog.Logger) (*Session, error) {
	rsEnc, err := fec.NewRSEncoderCustom(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("create RS encoder: %w", err)
	}

	id := uuid.NewString()
	sessionLog := log.With().Str("session_id", id).Logger()

	modulator, err := dpsk.NewModulator(cfg, dpsk.Cos, sessionLog)
	if err != nil {
		return nil, fmt.Errorf("create modulator: %w", err)
	}
	demodulator, err := dpsk.NewDemodulator(cfg, dpsk.Cos, sessionLog)
	if err != nil {
		return nil, fmt.Errorf("create demodulator: %w", err)
	}
	syncer, err := dpsk.NewClockSynchronizer(syncCfg)
	if err != nil {
		return nil, fmt.Errorf("create clock synchronizer: %w", err)
	}

	s := &Session{
		id:          id,
		audioIO:     audio.NewAudioIO(cfg.Fs, cfg.N()),
		modulator:   modulator,
		demodulator: demodulator,
		syncer:      syncer,
		rsEncoder:   rsEnc,
		cfg:         cfg,
		mode:        mode,
		eventChan:   make(chan SessionEvent, 100),
		log:         sessionLog,
	}

	s.transport = NewTransport(s.sendFrame, s.receiveFrame, sessionLog)
	return s, nil
}

// Open initializes the audio I/O based on the session mode.
func (s *Session) Open() error {
	s.setStatus(StatusConnecting, "Opening audio devices...")

	switch s.mode {
	case ModeSend:
		if err := s.audioIO.OpenOutput(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("Audio output open failed: %v", err))
			return err
		}
		s.hasOutput = true

		if err := s.audioIO.OpenInput(); err != nil {
			s.log.Warn().Err(err).Msg("no input device available, ACK reception disabled")
			s.hasInput = false
		} else {
			s.hasInput = true
		}

	case ModeReceive:
		if err := s.audioIO.OpenInput(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("Audio input open failed: %v", err))
			return err
		}
		s.hasInput = true

		if err := s.audioIO.OpenOutput(); err != nil {
			s.log.Warn().Err(err).Msg("no output device available, ACK sending disabled")
			s.hasOutput = false
		} else {
			s.hasOutput = true
		}

	case ModeDuplex:
		if err := s.audioIO.OpenDuplex(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("Audio open failed: %v", err))
			return err
		}
		s.hasInput = true
		s.hasOutput = true
	}

	s.setStatus(StatusConnected, "Audio devices ready")
	return nil
}

// Close releases all resources.
func (s *Session) Close() error {
	s.setStatus(StatusDisconnected, "Session closed")
	return s.audioIO.Close()
}

// Events returns the event channel for monitoring session state.
func (s *Session) Events() <-chan SessionEvent {
	return s.eventChan
}

// Transport returns the transport layer for file transfer operations.
func (s *Session) Transport() *Transport {
	return s.transport
}

// sendFrame modulates and transmits a protocol frame: preambleSymbols
// zero-bit symbols, then the RS-encoded, CRC-protected frame bytes.
func (s *Session) sendFrame(frame *Frame) error {
	if !s.hasOutput {
		return fmt.Errorf("no output device available")
	}

	encoded, err := FrameToBytes(frame, s.rsEncoder)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	preambleBits := make([]bool, preambleSymbols*s.cfg.BitsPerSymbol())
	dataBits := dsp.BytesToBits(encoded)
	bits := append(preambleBits, dataBits...)

	samples, err := s.modulator.Modulate(bits, dpsk.WithoutPivot)
	if err != nil {
		return fmt.Errorf("modulate: %w", err)
	}
	samples32 := dsp.SamplesToFloat32(samples)

	if err := s.audioIO.StartOutput(); err != nil {
		return fmt.Errorf("start output: %w", err)
	}
	defer s.audioIO.StopOutput()

	return s.audioIO.WriteSamples(samples32)
}

// receiveFrame receives and demodulates a protocol frame: captures audio
// for up to timeout, conditions the signal, locks the clock phase with the
// synchronizer, discards the preamble, demodulates the remainder, and
// RS-decodes the result.
func (s *Session) receiveFrame(timeout time.Duration) (*Frame, error) {
	if !s.hasInput {
		return nil, fmt.Errorf("no input device available")
	}

	if err := s.audioIO.StartInput(); err != nil {
		return nil, fmt.Errorf("start input: %w", err)
	}
	defer s.audioIO.StopInput()

	n := int(s.cfg.N())
	minSamples := n * (preambleSymbols + 4)
	totalSamples := minSamples + 10*n

	deadline := time.Now().Add(timeout)
	var allSamples []float64

	for time.Now().Before(deadline) {
		samples32, err := s.audioIO.Read()
		if err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		allSamples = append(allSamples, dsp.Float32ToSamples(samples32)...)

		if len(allSamples) >= totalSamples {
			break
		}
	}

	if len(allSamples) < minSamples {
		return nil, fmt.Errorf("timeout: insufficient samples (%d < %d)", len(allSamples), minSamples)
	}

	allSamples = dsp.ApplyDCRemoval(allSamples)
	allSamples = dsp.ApplyAGC(allSamples, 0.3)

	offset, err := s.syncer.FindClockPhase(allSamples)
	if err != nil {
		return nil, fmt.Errorf("clock sync: %w", err)
	}
	aligned := allSamples[offset:]
	aligned = aligned[:len(aligned)-len(aligned)%n]

	symbols, err := s.demodulator.Demodulate(aligned)
	if err != nil {
		return nil, fmt.Errorf("demodulate: %w", err)
	}
	if len(symbols) < preambleSymbols {
		return nil, fmt.Errorf("insufficient demodulated symbols: %d", len(symbols))
	}
	dataSymbols := symbols[preambleSymbols:]
	bits := numerics.SymbolsToBits(dataSymbols, s.cfg.BitsPerSymbol())
	data := dsp.BitsToBytes(bits)

	frame, err := BytesToFrame(data, s.rsEncoder)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	return frame, nil
}

func (s *Session) setStatus(status SessionStatus, message string) {
	s.status = status
	event := SessionEvent{
		Status:  status,
		Message: message,
	}
	select {
	case s.eventChan <- event:
	default:
		s.log.Warn().Str("status", status.String()).Str("message", message).Msg("event channel full, dropping")
	}
}
