// Package config handles lcmform configuration: defaults, command-line flags,
// an optional YAML file and LCMFORM_* environment overrides.
//
// Resolution order (highest priority first):
//  1. Flags set explicitly on the command line
//  2. Environment variables (LCMFORM_ENDPOINT, LCMFORM_TIMEOUT, ...)
//  3. The YAML file named by --config or LCMFORM_CONFIG
//  4. Defaults from DefaultConfig
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by the config layer.
const EnvPrefix = "LCMFORM_"

const (
	// DefaultEndpointURL is the calculation endpoint used when none is configured.
	DefaultEndpointURL = "http://localhost:8000/api/calcular-mmc/"
	// DefaultTimeout bounds a single request to the endpoint.
	DefaultTimeout = 30 * time.Second
	// DefaultListenAddr is where the reference server listens.
	DefaultListenAddr = ":8000"
	// DefaultMaxInterval is the largest y - x the reference server accepts.
	DefaultMaxInterval = 50
	// DefaultRateLimit is the sustained per-client request rate of the reference server.
	DefaultRateLimit = 5.0
	// DefaultRateBurst is the per-client burst size of the reference server.
	DefaultRateBurst = 10
	// DefaultLogLevel is the zerolog level name used when none is configured.
	DefaultLogLevel = "info"
	// DefaultTheme is the color theme name used when none is configured.
	DefaultTheme = "dark"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Client settings.
	EndpointURL string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	// X and Y pre-fill the form fields. They are raw text and go through the
	// same validation as typed input.
	X string `yaml:"x"`
	Y string `yaml:"y"`

	// Output settings.
	Quiet    bool   `yaml:"quiet"`
	Verbose  bool   `yaml:"verbose"`
	NoColor  bool   `yaml:"no_color"`
	Theme    string `yaml:"theme"`
	LogLevel string `yaml:"log_level"`
	// MetricsFile, when set, receives the client submission metrics in the
	// Prometheus text format on exit.
	MetricsFile string `yaml:"metrics_file"`

	// Reference server settings.
	ListenAddr  string  `yaml:"listen"`
	MaxInterval int64   `yaml:"max_interval"`
	RateLimit   float64 `yaml:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst"`

	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing else is specified.
func DefaultConfig() AppConfig {
	return AppConfig{
		EndpointURL: DefaultEndpointURL,
		Timeout:     DefaultTimeout,
		LogLevel:    DefaultLogLevel,
		Theme:       DefaultTheme,
		ListenAddr:  DefaultListenAddr,
		MaxInterval: DefaultMaxInterval,
		RateLimit:   DefaultRateLimit,
		RateBurst:   DefaultRateBurst,
	}
}

// BindFlags registers the flags shared by every command. Flag defaults are
// taken from the current values in cfg.
func BindFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "Path to a YAML configuration file")
	fs.StringVarP(&cfg.EndpointURL, "endpoint", "e", cfg.EndpointURL, "URL of the LCM calculation endpoint")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum time to wait for the endpoint (e.g., 10s, 1m)")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "Quiet mode: print only the result")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Show the full result value and request details")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Color theme (dark, light, none)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write client metrics to this file on exit (Prometheus text format)")
}

// BindInputFlags registers the --x and --y form pre-fill flags.
func BindInputFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVar(&cfg.X, "x", cfg.X, "Start of the interval (positive integer)")
	fs.StringVar(&cfg.Y, "y", cfg.Y, "End of the interval (positive integer greater than x)")
}

// BindServerFlags registers the reference server flags.
func BindServerFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "Address the reference server listens on")
	fs.Int64Var(&cfg.MaxInterval, "max-interval", cfg.MaxInterval, "Largest accepted y - x")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per second allowed per client")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "Burst size allowed per client")
}

// Resolve layers the configuration file and environment variables under the
// flags explicitly set on fs, then validates the result. fs must already be
// parsed and bound to cfg.
func Resolve(fs *pflag.FlagSet, cfg *AppConfig) error {
	explicit := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	path := cfg.ConfigFile
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return err
		}
		cfg.ConfigFile = path
	}

	applyEnvOverrides(cfg, fs)

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return apperrors.NewConfigError("flag --%s: %v", name, err)
		}
	}
	return cfg.Validate()
}

// LoadFile decodes the YAML file at path over cfg. Keys missing from the file
// leave the corresponding fields untouched.
func LoadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError("reading config file %s: %v", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	return nil
}

// Validate checks the semantic validity of the configuration.
func (c AppConfig) Validate() error {
	u, err := url.Parse(c.EndpointURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfigError("endpoint must be an absolute http(s) URL, got %q", c.EndpointURL)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose cannot be used together")
	}
	switch strings.ToLower(c.Theme) {
	case "", "dark", "light", "none":
	default:
		return apperrors.NewConfigError("unknown theme %q", c.Theme)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}
	if c.MaxInterval < 1 {
		return apperrors.NewConfigError("max interval must be at least 1, got %d", c.MaxInterval)
	}
	if c.RateLimit <= 0 {
		return apperrors.NewConfigError("rate limit must be positive, got %g", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return apperrors.NewConfigError("rate burst must be at least 1, got %d", c.RateBurst)
	}
	return nil
}

// String renders the client-relevant settings for verbose output.
func (c AppConfig) String() string {
	return fmt.Sprintf("endpoint=%s timeout=%s", c.EndpointURL, c.Timeout)
}
