package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dnscovert/dnstun/internal/helpers"
)

// envPrefix is the prefix every environment variable override carries,
// e.g. DNSTUN_SENDER_BASE_DOMAIN maps to sender.base_domain.
const envPrefix = "DNSTUN"

// maxAttemptsCeiling bounds sender.max_attempts: a config file or env
// override of, say, 10000 would turn one failed chunk into a multi-hour
// stall rather than a transfer failure.
const maxAttemptsCeiling = 10

// Load reads configuration from defaults, then configPath (if non-empty)
// and DNSTUN_* environment variables, in that precedence order (env
// wins over file, file wins over defaults). Callers then apply
// command-line flag overrides on top, same as the teacher's
// applyCLIOverrides pattern.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default (even an empty one): viper's Unmarshal
	// only sees keys it already knows, so a DNSTUN_* variable for a key
	// with no default would otherwise be ignored.
	v.SetDefault("sender.base_domain", "")
	v.SetDefault("sender.source_path", "")
	v.SetDefault("sender.dest_file", "")
	v.SetDefault("receiver.base_domain", "")

	v.SetDefault("sender.server", "8.8.8.8")
	v.SetDefault("sender.send_timeout", "4s")
	v.SetDefault("sender.max_attempts", 3)

	v.SetDefault("receiver.bind_addr", ":53")
	v.SetDefault("receiver.dest_dir", ".")
	v.SetDefault("receiver.session_timeout", "10s")
	v.SetDefault("receiver.database_path", "dnstun.db")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.addr", "127.0.0.1:8080")
}

func normalize(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}
	if cfg.Sender.MaxAttempts <= 0 {
		cfg.Sender.MaxAttempts = 3
	}
	cfg.Sender.MaxAttempts = helpers.ClampInt(cfg.Sender.MaxAttempts, 1, maxAttemptsCeiling)
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr must be set when api.enabled is true")
	}
	return nil
}
