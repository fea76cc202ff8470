// Package config loads dnstun's configuration with viper: defaults,
// then an optional YAML file, then DNSTUN_* environment variables,
// following the same layered precedence as the teacher's own
// internal/config package.
package config

// SenderConfig holds the settings a dnstun-send invocation needs.
type SenderConfig struct {
	BaseDomain  string `mapstructure:"base_domain" yaml:"base_domain" json:"base_domain"`
	Server      string `mapstructure:"server" yaml:"server" json:"server"`
	SourcePath  string `mapstructure:"source_path" yaml:"source_path" json:"source_path"`
	DestFile    string `mapstructure:"dest_file" yaml:"dest_file" json:"dest_file"`
	SendTimeout string `mapstructure:"send_timeout" yaml:"send_timeout" json:"send_timeout"`
	MaxAttempts int    `mapstructure:"max_attempts" yaml:"max_attempts" json:"max_attempts"`
}

// ReceiverConfig holds the settings a dnstun-recv invocation needs.
type ReceiverConfig struct {
	BaseDomain     string `mapstructure:"base_domain" yaml:"base_domain" json:"base_domain"`
	BindAddr       string `mapstructure:"bind_addr" yaml:"bind_addr" json:"bind_addr"`
	DestDir        string `mapstructure:"dest_dir" yaml:"dest_dir" json:"dest_dir"`
	SessionTimeout string `mapstructure:"session_timeout" yaml:"session_timeout" json:"session_timeout"`
	DatabasePath   string `mapstructure:"database_path" yaml:"database_path" json:"database_path"`
}

// LoggingConfig mirrors the teacher's internal/logging.Config, loaded
// through viper instead of constructed by hand.
type LoggingConfig struct {
	Level            string            `mapstructure:"level" yaml:"level" json:"level"`
	Structured       bool              `mapstructure:"structured" yaml:"structured" json:"structured"`
	StructuredFormat string            `mapstructure:"structured_format" yaml:"structured_format" json:"structured_format"`
	IncludePID       bool              `mapstructure:"include_pid" yaml:"include_pid" json:"include_pid"`
	ExtraFields      map[string]string `mapstructure:"extra_fields" yaml:"extra_fields" json:"extra_fields"`
}

// APIConfig controls the optional admin HTTP surface the receiver can
// expose (internal/adminapi).
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// Config is the top-level configuration value loaded by Load. Sender and
// Receiver are independent; a given process uses only the section that
// matches its cmd/ binary.
type Config struct {
	Sender   SenderConfig   `mapstructure:"sender" yaml:"sender" json:"sender"`
	Receiver ReceiverConfig `mapstructure:"receiver" yaml:"receiver" json:"receiver"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging" json:"logging"`
	API      APIConfig      `mapstructure:"api" yaml:"api" json:"api"`
}
