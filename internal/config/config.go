package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/nyblom/macstats/internal/errors"
)

const (
	DefaultURL      = "http://localhost:8086"
	DefaultDatabase = "macstats"
	DefaultPrefix   = "mac"
	DefaultInterval = 30
)

// InfluxConfig holds the metrics sink connection parameters. Either the
// v1 pair (username/password) or the v2 triple (org/token/bucket) may be
// set, never both.
type InfluxConfig struct {
	URL               string            `mapstructure:"url"`
	Database          string            `mapstructure:"database"`
	Username          string            `mapstructure:"username"`
	Password          string            `mapstructure:"password"`
	Org               string            `mapstructure:"org"`
	Token             string            `mapstructure:"token"`
	Bucket            string            `mapstructure:"bucket"`
	MeasurementPrefix string            `mapstructure:"measurement_prefix"`
	Tags              map[string]string `mapstructure:"tags"`
}

// MetricsConfig enables or disables whole sensor groups
type MetricsConfig struct {
	CPUTemp    bool `mapstructure:"cpu_temp"`
	GPUTemp    bool `mapstructure:"gpu_temp"`
	SystemTemp bool `mapstructure:"system_temp"`
	Power      bool `mapstructure:"power"`
	Fans       bool `mapstructure:"fans"`
}

type Config struct {
	Hostname string        `mapstructure:"hostname"`
	Interval int           `mapstructure:"interval"`
	Debug    bool          `mapstructure:"debug"`
	Verbose  bool          `mapstructure:"verbose"`
	Influx   InfluxConfig  `mapstructure:"influx"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

// PollInterval returns the interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// RegisterFlags declares the CLI flags that may override file values
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("hostname", "", "Hostname tag attached to every metric")
	flags.Int("interval", DefaultInterval, "Seconds between collection cycles")
	flags.Bool("debug", false, "Enable debug logging")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.String("url", DefaultURL, "InfluxDB URL")
	flags.String("database", DefaultDatabase, "InfluxDB database (v1) / default bucket (v2)")
	flags.String("username", "", "InfluxDB v1 username")
	flags.String("password", "", "InfluxDB v1 password")
	flags.String("org", "", "InfluxDB v2 organization")
	flags.String("token", "", "InfluxDB v2 token")
	flags.String("bucket", "", "InfluxDB v2 bucket")
}

// flagBindings maps config keys to flag names. CLI flags take precedence
// over file values for the same field; the merge happens here and nowhere
// else.
var flagBindings = map[string]string{
	"hostname":        "hostname",
	"interval":        "interval",
	"debug":           "debug",
	"verbose":         "verbose",
	"influx.url":      "url",
	"influx.database": "database",
	"influx.username": "username",
	"influx.password": "password",
	"influx.org":      "org",
	"influx.token":    "token",
	"influx.bucket":   "bucket",
}

// Load reads the configuration file, merges any changed CLI flags over it
// and validates the result
func Load(flags *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("macstats")
	v.SetConfigType("toml")
	if path := os.Getenv("MACSTATS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("$HOME/.config/macstats")
		v.AddConfigPath("/etc/macstats")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errFactory.Wrap(errors.ErrBindFlags, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if cfg.Hostname == "" {
		if name, err := os.Hostname(); err == nil {
			cfg.Hostname = name
		} else {
			cfg.Hostname = "unknown"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("influx.url", DefaultURL)
	v.SetDefault("influx.database", DefaultDatabase)
	v.SetDefault("influx.measurement_prefix", DefaultPrefix)
	v.SetDefault("metrics.cpu_temp", true)
	v.SetDefault("metrics.gpu_temp", true)
	v.SetDefault("metrics.system_temp", true)
	v.SetDefault("metrics.power", true)
	v.SetDefault("metrics.fans", true)
}

// Validate rejects malformed or contradictory configurations before any
// hardware or network access happens
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Influx.URL == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "influx url is required")
	}

	hasV1 := c.Influx.Username != "" || c.Influx.Password != ""
	hasV2 := c.Influx.Org != "" || c.Influx.Token != ""
	if hasV1 && hasV2 {
		return errFactory.New(ErrConflictingCredentials)
	}
	if c.Influx.Token != "" && c.Influx.Org == "" {
		return errFactory.WithMessage(ErrIncompleteCredentials, "token requires an org")
	}
	if c.Influx.Org != "" && c.Influx.Token == "" {
		return errFactory.WithMessage(ErrIncompleteCredentials, "org requires a token")
	}
	if (c.Influx.Username == "") != (c.Influx.Password == "") {
		return errFactory.WithMessage(ErrIncompleteCredentials, "username and password must be set together")
	}

	return nil
}
