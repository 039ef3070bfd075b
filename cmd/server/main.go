package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/seredenko/dpsk-modem/internal/audio"
	"github.com/seredenko/dpsk-modem/internal/config"
	"github.com/seredenko/dpsk-modem/internal/logging"
	"github.com/seredenko/dpsk-modem/internal/server"
)

func main() {
	var configPath string
	var listDevices bool
	pflag.StringVar(&configPath, "config", "", "path to a YAML config file")
	pflag.BoolVar(&listDevices, "list-devices", false, "list audio devices and exit")

	cfg := config.Default()
	config.BindFlags(pflag.CommandLine, &cfg)
	pflag.Parse()
	if configPath != "" {
		// Load the file over the defaults, then parse again so flags the
		// caller passed still take precedence over file values.
		loaded, err := config.Load(configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
		pflag.Parse()
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty, Output: os.Stderr})

	if err := audio.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PortAudio")
	}
	defer audio.Terminate()

	if listDevices {
		if err := audio.PrintDevices(); err != nil {
			log.Fatal().Err(err).Msg("failed to list devices")
		}
		return
	}

	os.MkdirAll(cfg.Server.UploadDir, 0755)
	os.MkdirAll(cfg.Server.ReceiveDir, 0755)

	metrics := server.NewMetrics(prometheus.DefaultRegisterer)
	handlers := server.NewHandlers(cfg, metrics, log)
	srv := server.NewServer(cfg.Server.Addr, handlers, "./web/static", log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		audio.Terminate()
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
