// Command dnstun-recv listens for covert-channel file transfers and
// writes each one to a destination directory, optionally logging every
// transfer to a SQLite database and exposing it over an admin HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnscovert/dnstun/internal/adminapi"
	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/config"
	"github.com/dnscovert/dnstun/internal/events"
	"github.com/dnscovert/dnstun/internal/logging"
	"github.com/dnscovert/dnstun/internal/session"
	"github.com/dnscovert/dnstun/internal/store"
	"github.com/dnscovert/dnstun/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dnstun-recv: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath     string
	baseDomain     string
	bindAddr       string
	destDir        string
	sessionTimeout time.Duration
	databasePath   string
	apiEnabled     bool
	apiAddr        string
	jsonLogs       bool
	debug          bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to a dnstun YAML config file")
	flag.StringVar(&f.baseDomain, "base-domain", "", "Override the channel's base domain")
	flag.StringVar(&f.bindAddr, "bind", "", "Override the UDP bind address (HOST:PORT)")
	flag.StringVar(&f.destDir, "dest-dir", "", "Override the directory received files are written to")
	flag.DurationVar(&f.sessionTimeout, "session-timeout", 0, "Override how long an in-progress session waits for its next packet")
	flag.StringVar(&f.databasePath, "db", "", "Override the transfer-log SQLite database path")
	flag.BoolVar(&f.apiEnabled, "api", false, "Enable the admin HTTP API")
	flag.StringVar(&f.apiAddr, "api-addr", "", "Override the admin HTTP API listen address")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.baseDomain != "" {
		cfg.Receiver.BaseDomain = f.baseDomain
	}
	if f.bindAddr != "" {
		cfg.Receiver.BindAddr = f.bindAddr
	}
	if f.destDir != "" {
		cfg.Receiver.DestDir = f.destDir
	}
	if f.sessionTimeout > 0 {
		cfg.Receiver.SessionTimeout = f.sessionTimeout.String()
	}
	if f.databasePath != "" {
		cfg.Receiver.DatabasePath = f.databasePath
	}
	if f.apiEnabled {
		cfg.API.Enabled = true
	}
	if f.apiAddr != "" {
		cfg.API.Addr = f.apiAddr
		cfg.API.Enabled = true
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	if cfg.Receiver.BaseDomain == "" {
		return fmt.Errorf("receiver.base_domain must be set (use -base-domain or a config file)")
	}
	base, err := basedomain.Parse(cfg.Receiver.BaseDomain)
	if err != nil {
		return fmt.Errorf("base domain: %w", err)
	}
	if err := os.MkdirAll(cfg.Receiver.DestDir, 0o755); err != nil {
		return fmt.Errorf("create dest dir %s: %w", cfg.Receiver.DestDir, err)
	}

	sessionTimeout, err := time.ParseDuration(cfg.Receiver.SessionTimeout)
	if err != nil {
		return fmt.Errorf("receiver.session_timeout %q: %w", cfg.Receiver.SessionTimeout, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var st *store.Store
	var observer *store.TransferObserver
	if cfg.Receiver.DatabasePath != "" {
		st, err = store.Open(cfg.Receiver.DatabasePath)
		if err != nil {
			return fmt.Errorf("open transfer log: %w", err)
		}
		defer st.Close()
		observer = store.NewTransferObserver(st, cfg.Receiver.BindAddr, store.DirectionReceive, logger)
	}

	var apiSrv *adminapi.Server
	if cfg.API.Enabled {
		apiSrv = adminapi.New(cfg.API.Addr, st, logger)
		logger.Info("admin api starting", "addr", apiSrv.Addr())
		go func() {
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin api error", "err", err)
			}
		}()
	}

	logger.Info("dnstun-recv starting",
		"bind", cfg.Receiver.BindAddr,
		"base_domain", base.Dotted(),
		"dest_dir", cfg.Receiver.DestDir,
		"session_timeout", sessionTimeout,
	)

	ep, err := transport.ListenReceiver(ctx, cfg.Receiver.BindAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Receiver.BindAddr, err)
	}

	var obs events.Observer
	if observer != nil {
		obs = observer
	}

	receiver := session.NewReceiver(ep, base, cfg.Receiver.DestDir, obs, sessionTimeout)
	err = receiver.Serve(ctx)

	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = apiSrv.Shutdown(shutdownCtx)
		shutdownCancel()
		logger.Info("admin api stopped")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("receiver exited with error: %w", err)
	}
	logger.Info("dnstun-recv stopped")
	return nil
}
