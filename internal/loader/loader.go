// Package loader handles configuration loading and validation.
//
// Configuration comes from a YAML file with defaults applied first, then
// environment-variable overrides for the settings the deployment
// environment owns (log group, bucket, prefix, format).
package loader

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	appconfig "github.com/xtxerr/siphon/config"
	"github.com/xtxerr/siphon/internal/codec"
	"github.com/xtxerr/siphon/internal/errors"
)

// Config is the daemon configuration.
type Config struct {
	// Listen is the admin/trigger server listen address.
	Listen string `yaml:"listen"`

	Log      LogConfig      `yaml:"log"`
	Export   ExportConfig   `yaml:"export"`
	Query    QueryConfig    `yaml:"query"`
	Schedule ScheduleConfig `yaml:"schedule"`
	S3       S3Config       `yaml:"s3"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// JSON selects JSON log output.
	JSON bool `yaml:"json"`
}

// ExportConfig configures what is exported and where.
type ExportConfig struct {
	// LogGroup is the source log group. Env override: LOG_GROUP_NAME.
	LogGroup string `yaml:"log_group"`

	// Bucket is the target bucket. Env override: S3_BUCKET.
	Bucket string `yaml:"bucket"`

	// Prefix is the object key prefix. Env override: S3_PREFIX.
	Prefix string `yaml:"prefix"`

	// Format is json, csv or parquet. Env override: EXPORT_FORMAT.
	Format string `yaml:"format"`

	// Category is the exported log category.
	Category string `yaml:"category"`

	// TZOffsetHours is the fixed local timezone offset for windows and
	// date partitioning.
	TZOffsetHours int `yaml:"tz_offset_hours"`
}

// QueryConfig bounds the query poll loop.
type QueryConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ScheduleConfig configures the export cadence.
type ScheduleConfig struct {
	// DailyAt is the local "HH:MM" at which the completed-day export
	// runs. Empty disables the daily schedule.
	DailyAt string `yaml:"daily_at"`

	// IncrementalEvery, when non-zero, runs an incremental export of the
	// current day at this interval.
	IncrementalEvery time.Duration `yaml:"incremental_every"`
}

// S3Config configures the storage endpoint.
type S3Config struct {
	Endpoint string `yaml:"endpoint"`
	Secure   *bool  `yaml:"secure"`
}

// DefaultConfig returns a configuration with documented defaults.
func DefaultConfig() *Config {
	secure := true
	return &Config{
		Listen: appconfig.DefaultListenAddress,
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Prefix:        appconfig.DefaultPrefix,
			Format:        appconfig.DefaultFormat,
			Category:      appconfig.DefaultCategory,
			TZOffsetHours: appconfig.DefaultTZOffsetHours,
		},
		Query: QueryConfig{
			PollInterval: appconfig.DefaultQueryPollInterval,
			Timeout:      appconfig.DefaultQueryTimeout,
		},
		Schedule: ScheduleConfig{
			DailyAt: appconfig.DefaultDailyAt,
		},
		S3: S3Config{
			Endpoint: appconfig.DefaultS3Endpoint,
			Secure:   &secure,
		},
	}
}

// Load loads configuration from a YAML file, expands environment
// variables in its contents, applies env overrides, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies environment-variable overrides. These take precedence
// over the file: the deployment environment owns them.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOG_GROUP_NAME"); v != "" {
		c.Export.LogGroup = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		c.Export.Bucket = v
	}
	if v := os.Getenv("S3_PREFIX"); v != "" {
		c.Export.Prefix = v
	}
	if v := os.Getenv("EXPORT_FORMAT"); v != "" {
		c.Export.Format = v
	}
}

// Validate checks that the configuration can drive an export.
func (c *Config) Validate() error {
	if c.Export.LogGroup == "" {
		return errors.NewMissingField("export.log_group")
	}
	if c.Export.Bucket == "" {
		return errors.NewMissingField("export.bucket")
	}
	if _, err := codec.ParseFormat(c.Export.Format); err != nil {
		return err
	}
	if c.Export.TZOffsetHours < -12 || c.Export.TZOffsetHours > 14 {
		return errors.NewInvalidValue("export.tz_offset_hours", c.Export.TZOffsetHours, "must be a valid UTC offset")
	}
	if c.Query.PollInterval <= 0 {
		return errors.NewInvalidValue("query.poll_interval", c.Query.PollInterval, "must be positive")
	}
	if c.Query.Timeout <= 0 {
		return errors.NewInvalidValue("query.timeout", c.Query.Timeout, "must be positive")
	}
	if c.Schedule.DailyAt != "" {
		if _, err := time.Parse("15:04", c.Schedule.DailyAt); err != nil {
			return errors.NewInvalidValue("schedule.daily_at", c.Schedule.DailyAt, "must be HH:MM")
		}
	}
	return nil
}

// Format returns the parsed export format.
func (c *Config) Format() codec.Format {
	f, err := codec.ParseFormat(c.Export.Format)
	if err != nil {
		return codec.FormatJSON
	}
	return f
}

// Secure reports whether TLS is enabled for the storage endpoint.
func (c *Config) Secure() bool {
	if c.S3.Secure == nil {
		return true
	}
	return *c.S3.Secure
}
