// Package config loads and validates the YAML service configuration. Every
// field has a default, so the service runs with no config file at all.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/marketloop/backtestd/internal/version"
	"github.com/marketloop/backtestd/pkg/errors"
)

// EnvConfigPath is consulted for the config file path when no --config flag
// is given.
const EnvConfigPath = "BACKTESTD_CONFIG"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host              string        `yaml:"host" json:"host" jsonschema:"title=Host,default=0.0.0.0" validate:"required"`
	Port              int           `yaml:"port" json:"port" jsonschema:"title=Port,default=8080" validate:"gte=1,lte=65535"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" json:"read_header_timeout" jsonschema:"title=Read Header Timeout,default=10s" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" jsonschema:"title=Shutdown Timeout,default=5s" validate:"gt=0"`
	AllowedOrigins    []string      `yaml:"allowed_origins" json:"allowed_origins" jsonschema:"title=Allowed Origins" validate:"min=1"`
}

// EngineConfig bounds the simulator.
type EngineConfig struct {
	MaxCandles    int `yaml:"max_candles" json:"max_candles" jsonschema:"title=Max Candles,description=Largest accepted candle series,default=500000" validate:"gte=1"`
	DecimalPlaces int `yaml:"decimal_places" json:"decimal_places" jsonschema:"title=Decimal Places,description=Quantity precision for position sizing,default=8" validate:"gte=0,lte=18"`
}

// StoreConfig selects the run store backing file.
type StoreConfig struct {
	Path         string `yaml:"path" json:"path" jsonschema:"title=Path,description=DuckDB database path or :memory:,default=:memory:" validate:"required"`
	HistoryLimit int    `yaml:"history_limit" json:"history_limit" jsonschema:"title=History Limit,description=Stored runs kept before pruning,default=1000" validate:"gte=1"`
}

// RiskConfig sets the assessment limits and the stream cadence.
type RiskConfig struct {
	MaxDrawdownPct       float64       `yaml:"max_drawdown_pct" json:"max_drawdown_pct" jsonschema:"title=Max Drawdown Pct,default=25" validate:"gte=0,lte=100"`
	MaxConsecutiveLosses int           `yaml:"max_consecutive_losses" json:"max_consecutive_losses" jsonschema:"title=Max Consecutive Losses,default=5" validate:"gte=0"`
	StreamInterval       time.Duration `yaml:"stream_interval" json:"stream_interval" jsonschema:"title=Stream Interval,default=2s" validate:"gt=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `yaml:"level" json:"level" jsonschema:"title=Level,default=info,enum=debug,enum=info,enum=warn,enum=error" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" json:"encoding" jsonschema:"title=Encoding,default=json,enum=json,enum=console" validate:"oneof=json console"`
}

// Config is the full service configuration.
type Config struct {
	SchemaVersion string       `yaml:"schema_version" json:"schema_version" jsonschema:"title=Schema Version" validate:"required"`
	Server        ServerConfig `yaml:"server" json:"server"`
	Engine        EngineConfig `yaml:"engine" json:"engine"`
	Store         StoreConfig  `yaml:"store" json:"store"`
	Risk          RiskConfig   `yaml:"risk" json:"risk"`
	Log           LogConfig    `yaml:"log" json:"log"`
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "0.0.0.0",
		Port:              8080,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		AllowedOrigins:    []string{"*"},
	}
}

func defaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxDrawdownPct:       25.0,
		MaxConsecutiveLosses: 5,
		StreamInterval:       2 * time.Second,
	}
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		SchemaVersion: version.ConfigSchemaVersion,
		Server:        defaultServerConfig(),
		Engine: EngineConfig{
			MaxCandles:    500000,
			DecimalPlaces: 8,
		},
		Store: StoreConfig{
			Path:         ":memory:",
			HistoryLimit: 1000,
		},
		Risk: defaultRiskConfig(),
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// UnmarshalYAML fills absent keys with defaults and parses the timeout
// fields from duration strings.
func (c *ServerConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain struct {
		Host              string   `yaml:"host"`
		Port              int      `yaml:"port"`
		ReadHeaderTimeout string   `yaml:"read_header_timeout"`
		ShutdownTimeout   string   `yaml:"shutdown_timeout"`
		AllowedOrigins    []string `yaml:"allowed_origins"`
	}

	defaults := defaultServerConfig()
	raw := plain{
		Host:           defaults.Host,
		Port:           defaults.Port,
		AllowedOrigins: defaults.AllowedOrigins,
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	readHeaderTimeout, err := parseDuration(raw.ReadHeaderTimeout, defaults.ReadHeaderTimeout, "read_header_timeout")
	if err != nil {
		return err
	}
	shutdownTimeout, err := parseDuration(raw.ShutdownTimeout, defaults.ShutdownTimeout, "shutdown_timeout")
	if err != nil {
		return err
	}

	c.Host = raw.Host
	c.Port = raw.Port
	c.ReadHeaderTimeout = readHeaderTimeout
	c.ShutdownTimeout = shutdownTimeout
	c.AllowedOrigins = raw.AllowedOrigins

	return nil
}

// UnmarshalYAML fills absent keys with defaults and parses stream_interval
// from a duration string.
func (c *RiskConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain struct {
		MaxDrawdownPct       float64 `yaml:"max_drawdown_pct"`
		MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
		StreamInterval       string  `yaml:"stream_interval"`
	}

	defaults := defaultRiskConfig()
	raw := plain{
		MaxDrawdownPct:       defaults.MaxDrawdownPct,
		MaxConsecutiveLosses: defaults.MaxConsecutiveLosses,
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	streamInterval, err := parseDuration(raw.StreamInterval, defaults.StreamInterval, "stream_interval")
	if err != nil {
		return err
	}

	c.MaxDrawdownPct = raw.MaxDrawdownPct
	c.MaxConsecutiveLosses = raw.MaxConsecutiveLosses
	c.StreamInterval = streamInterval

	return nil
}

func parseDuration(value string, fallback time.Duration, field string) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q", field, value)
	}

	return parsed, nil
}

// MarshalYAML writes the timeout fields back as duration strings, the form
// UnmarshalYAML reads.
func (c ServerConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Host              string   `yaml:"host"`
		Port              int      `yaml:"port"`
		ReadHeaderTimeout string   `yaml:"read_header_timeout"`
		ShutdownTimeout   string   `yaml:"shutdown_timeout"`
		AllowedOrigins    []string `yaml:"allowed_origins"`
	}{
		Host:              c.Host,
		Port:              c.Port,
		ReadHeaderTimeout: c.ReadHeaderTimeout.String(),
		ShutdownTimeout:   c.ShutdownTimeout.String(),
		AllowedOrigins:    c.AllowedOrigins,
	}, nil
}

// MarshalYAML writes stream_interval back as a duration string.
func (c RiskConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MaxDrawdownPct       float64 `yaml:"max_drawdown_pct"`
		MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
		StreamInterval       string  `yaml:"stream_interval"`
	}{
		MaxDrawdownPct:       c.MaxDrawdownPct,
		MaxConsecutiveLosses: c.MaxConsecutiveLosses,
		StreamInterval:       c.StreamInterval.String(),
	}, nil
}

// Validate checks field ranges and the declared schema version.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := version.CheckSchemaCompatibility(c.SchemaVersion); err != nil {
		return errors.Wrap(errors.ErrCodeIncompatibleSchema, "unsupported config schema version", err)
	}

	return nil
}

// Load reads the config at path, or at $BACKTESTD_CONFIG when path is
// empty. A missing file yields the pure defaults; a present but invalid
// file is an error.
func Load(path string) (Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return config, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}

		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}
