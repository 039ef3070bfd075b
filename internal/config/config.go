// Package config loads the modem's operational knobs from an optional YAML
// file, with command-line flags taking precedence over file values and
// built-in defaults taking precedence over neither. It wires
// gopkg.in/yaml.v3 for the file format and github.com/spf13/pflag for the
// flag surface, matching the configuration stack the rest of the retrieved
// corpus standardizes on.
package config

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/seredenko/dpsk-modem/internal/dpsk"
)

// Link carries the DPSK signal parameters a Modulator/Demodulator pair is
// built from. Field names mirror internal/dpsk.Config; this is the
// YAML-serializable, flag-overridable surface for it.
type Link struct {
	SampleRate           uint32  `yaml:"sample_rate"`
	SymbolRate           uint32  `yaml:"symbol_rate"`
	Positionality        int     `yaml:"positionality"`
	CarrierFrequency     uint32  `yaml:"carrier_frequency"`
	IntermediateFreq     uint32  `yaml:"intermediate_frequency"`
	Amplitude            float64 `yaml:"amplitude"`
	Phase                float64 `yaml:"phase"`
	PhaseShift           float64 `yaml:"phase_shift"`
	AllowCarrierFallback bool    `yaml:"allow_carrier_fallback"`
}

// DPSKConfig converts Link into the dpsk.Config the modulator and
// demodulator are built from.
func (l Link) DPSKConfig() dpsk.Config {
	return dpsk.Config{
		Fs:                   l.SampleRate,
		Rs:                   l.SymbolRate,
		M:                    l.Positionality,
		Fc:                   l.CarrierFrequency,
		IF:                   l.IntermediateFreq,
		A:                    l.Amplitude,
		Phase:                l.Phase,
		PhaseShift:           l.PhaseShift,
		AllowCarrierFallback: l.AllowCarrierFallback,
	}
}

// Sync carries the clock-phase synchronizer's tunables.
type Sync struct {
	Threshold      float64 `yaml:"threshold"`
	MaxCandidates  int     `yaml:"max_candidates"`
	BufferCapacity int     `yaml:"buffer_capacity"`
}

// DPSKSyncConfig converts Sync and Link into the dpsk.SyncConfig the clock
// synchronizer is built from.
func (s Sync) DPSKSyncConfig(l Link) dpsk.SyncConfig {
	return dpsk.SyncConfig{
		Fs:             l.SampleRate,
		Rs:             l.SymbolRate,
		Fc:             l.CarrierFrequency,
		Threshold:      s.Threshold,
		MaxCandidates:  s.MaxCandidates,
		BufferCapacity: s.BufferCapacity,
	}
}

// FEC carries the Reed-Solomon shard counts for the outer protocol layer.
type FEC struct {
	DataShards   int `yaml:"data_shards"`
	ParityShards int `yaml:"parity_shards"`
}

// Server carries the HTTP/WebSocket front end's bind address and
// filesystem roots.
type Server struct {
	Addr       string `yaml:"addr"`
	UploadDir  string `yaml:"upload_dir"`
	ReceiveDir string `yaml:"receive_dir"`
}

// Config is the complete set of knobs the server binary accepts.
type Config struct {
	Link     Link   `yaml:"link"`
	Sync     Sync   `yaml:"sync"`
	FEC      FEC    `yaml:"fec"`
	Server   Server `yaml:"server"`
	LogLevel string `yaml:"log_level"`
	Pretty   bool   `yaml:"pretty"`
}

// Default returns the built-in configuration: a BPSK link at 48 kHz
// sampling against a 1 kHz carrier/symbol rate, matched Reed-Solomon shard
// counts to the teacher's defaults, and info-level logging.
func Default() Config {
	return Config{
		Link: Link{
			SampleRate:       48000,
			SymbolRate:       1000,
			Positionality:    2,
			CarrierFrequency: 1000,
			Amplitude:        1.0,
		},
		Sync: Sync{
			Threshold:      0.05,
			MaxCandidates:  64,
			BufferCapacity: 4096,
		},
		FEC: FEC{
			DataShards:   223,
			ParityShards: 32,
		},
		Server: Server{
			Addr:       "0.0.0.0:8080",
			UploadDir:  "./uploads",
			ReceiveDir: "./received",
		},
		LogLevel: "info",
	}
}

// Load reads path as YAML over top of Default(); an empty path returns
// Default() unchanged. A missing file is an error, since a caller who named
// a config file expects it to exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BindFlags registers pflag overrides for every Config field onto fs,
// binding each flag directly to its cfg field and defaulting it to cfg's
// current value. fs.Parse only writes the fields whose flags the caller
// actually passed; the rest keep their current values.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Uint32Var(&cfg.Link.SampleRate, "sample-rate", cfg.Link.SampleRate, "sampling frequency in Hz")
	fs.Uint32Var(&cfg.Link.SymbolRate, "symbol-rate", cfg.Link.SymbolRate, "symbol rate in symbols/second")
	fs.IntVar(&cfg.Link.Positionality, "positionality", cfg.Link.Positionality, "constellation size M, a power of two")
	fs.Uint32Var(&cfg.Link.CarrierFrequency, "carrier-frequency", cfg.Link.CarrierFrequency, "carrier frequency in Hz")
	fs.Uint32Var(&cfg.Link.IntermediateFreq, "intermediate-frequency", cfg.Link.IntermediateFreq, "intermediate frequency in Hz, 0 to disable")
	fs.Float64Var(&cfg.Link.Amplitude, "amplitude", cfg.Link.Amplitude, "carrier amplitude")
	fs.Float64Var(&cfg.Link.Phase, "phase", cfg.Link.Phase, "initial phase accumulator value")
	fs.Float64Var(&cfg.Link.PhaseShift, "phase-shift", cfg.Link.PhaseShift, "constellation phase shift")
	fs.BoolVar(&cfg.Link.AllowCarrierFallback, "allow-carrier-fallback", cfg.Link.AllowCarrierFallback, "substitute a surrogate carrier when Fc does not divide Fs")

	fs.Float64Var(&cfg.Sync.Threshold, "sync-threshold", cfg.Sync.Threshold, "clock synchronizer candidate deviation threshold")
	fs.IntVar(&cfg.Sync.MaxCandidates, "sync-max-candidates", cfg.Sync.MaxCandidates, "clock synchronizer candidate budget")
	fs.IntVar(&cfg.Sync.BufferCapacity, "sync-buffer-capacity", cfg.Sync.BufferCapacity, "clock synchronizer ring buffer capacity, 0 for unbounded")

	fs.IntVar(&cfg.FEC.DataShards, "fec-data-shards", cfg.FEC.DataShards, "Reed-Solomon data shard count")
	fs.IntVar(&cfg.FEC.ParityShards, "fec-parity-shards", cfg.FEC.ParityShards, "Reed-Solomon parity shard count")

	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "server bind address")
	fs.StringVar(&cfg.Server.UploadDir, "upload-dir", cfg.Server.UploadDir, "upload directory")
	fs.StringVar(&cfg.Server.ReceiveDir, "receive-dir", cfg.Server.ReceiveDir, "receive directory")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Pretty, "pretty-log", cfg.Pretty, "use human-readable console log output")
}
