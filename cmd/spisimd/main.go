// cmd/spisimd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tamzrod/spisim-control/internal/api"
	"github.com/tamzrod/spisim-control/internal/clock"
	"github.com/tamzrod/spisim-control/internal/config"
	"github.com/tamzrod/spisim-control/internal/driver"
	"github.com/tamzrod/spisim-control/internal/logbuf"
	"github.com/tamzrod/spisim-control/internal/process"
	"github.com/tamzrod/spisim-control/internal/sequence"
	"github.com/tamzrod/spisim-control/internal/spi"
)

var version = "dev"

const shutdownGrace = 5 * time.Second

func main() {
	var (
		cfgPath  string
		listen   string
		logLevel string
		showVer  bool
	)
	pflag.StringVarP(&cfgPath, "config", "c", "", "path to the YAML config file")
	pflag.StringVar(&listen, "listen", "", "HTTP listen address (overrides api.listen)")
	pflag.StringVar(&logLevel, "log-level", "", "debug | info | warn | error (overrides logs.level)")
	pflag.BoolVar(&showVer, "version", false, "print version and exit")
	pflag.Parse()

	if showVer {
		fmt.Println("spisimd", version)
		return
	}

	if cfgPath == "" && pflag.NArg() > 0 {
		cfgPath = pflag.Arg(0)
	}
	if cfgPath == "" {
		log.Fatal("usage: spisimd --config <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if listen != "" {
		cfg.API.Listen = listen
	}
	if logLevel != "" {
		cfg.Logs.Level = logLevel
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	// --------------------
	// Logging: stderr plus the operator ring buffer
	// --------------------

	level := cfg.LogLevel()
	buf := logbuf.New(cfg.Logs.Capacity)
	stderr := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(logbuf.NewHandler(buf, stderr, level))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Build components
	// --------------------

	runner := &process.Exec{
		Timeout:    config.Millis(cfg.Process.TimeoutMs),
		Sudo:       cfg.Process.Sudo,
		Privileged: []string{"insmod", "rmmod", "chmod"},
	}

	store := sequence.NewFileStore(cfg.Sequences.Path, logger.With("component", "sequences"))

	mgr, err := driver.New(driver.Config{
		DriverPath:  cfg.Driver.Path,
		ModuleName:  cfg.Driver.ModuleName,
		DeviceRoot:  cfg.Driver.DeviceRoot,
		Permissions: cfg.Driver.Permissions,
		DevicePoll:  config.Millis(cfg.Driver.DevicePollMs),
		DeviceWait:  config.Millis(cfg.Driver.DeviceWaitMs),
	}, runner, store, clock.Real(), logger.With("component", "driver"))
	if err != nil {
		if errors.Is(err, driver.ErrDriverMissing) {
			log.Fatalf("driver artifact not found: %v", err)
		}
		log.Fatalf("driver manager failed: %v", err)
	}

	channel := spi.New(spi.Config{
		Timeout:   config.Millis(cfg.SPI.TimeoutMs),
		Backoff:   config.Millis(cfg.SPI.BackoffMs),
		ChunkSize: cfg.SPI.ReadChunk,
		Serialize: cfg.SPI.Serialize,
	}, spi.UnixOpener{}, clock.Real(), logger.With("component", "spi"))

	// --------------------
	// Startup report
	// --------------------

	logger.Info("driver artifact found", "path", mgr.DriverPath())
	if cfg.Process.Sudo {
		if process.CheckSudo(ctx, config.Millis(cfg.Process.TimeoutMs)) {
			logger.Info("sudo available")
		} else {
			logger.Warn("sudo not available without a password, privileged commands will fail")
		}
	}
	if seqs, err := sequence.Load(cfg.Sequences.Path); err == nil {
		logger.Info("stored sequences found", "count", len(seqs), "path", cfg.Sequences.Path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("stored sequences unreadable", "path", cfg.Sequences.Path, "error", err)
	}
	if mgr.IsLoaded(ctx) {
		logger.Info("driver already loaded", "module", cfg.Driver.ModuleName)
	} else {
		logger.Info("driver not loaded", "module", cfg.Driver.ModuleName)
	}

	// --------------------
	// HTTP surface
	// --------------------

	srv := &api.Server{
		Driver:        mgr,
		SPI:           channel,
		Logs:          buf,
		Log:           logger.With("component", "api"),
		DefaultDevice: cfg.Driver.DefaultDeviceName,
	}

	httpSrv := &http.Server{
		Addr:              cfg.API.Listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.API.Listen)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
}
