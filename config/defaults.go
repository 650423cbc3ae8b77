// Package config provides configuration defaults and utilities
// for the siphon application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or environment variables.
package config

import "time"

// =============================================================================
// Export Defaults
// =============================================================================

const (
	// DefaultPrefix is the key prefix for exported partition objects.
	// Override via config: export.prefix or S3_PREFIX env
	DefaultPrefix = "user-actions"

	// DefaultFormat is the partition object format: json, csv or parquet.
	// Override via config: export.format or EXPORT_FORMAT env
	DefaultFormat = "json"

	// DefaultCategory is the log category selected for export.
	// Only records whose category field equals this value are exported.
	DefaultCategory = "user_action"

	// DefaultTZOffsetHours is the fixed local timezone offset applied to
	// window computation and date partitioning (UTC+7, Vietnam time).
	// Override via config: export.tz_offset_hours
	DefaultTZOffsetHours = 7
)

// =============================================================================
// Query Defaults
// =============================================================================

const (
	// DefaultQueryPollInterval is how often a started query is polled
	// for completion.
	// Override via config: query.poll_interval
	DefaultQueryPollInterval = 2 * time.Second

	// DefaultQueryTimeout is the hard bound on query completion.
	// A query still pending after this long fails the run.
	// Override via config: query.timeout
	DefaultQueryTimeout = 120 * time.Second
)

// =============================================================================
// Daemon Defaults
// =============================================================================

const (
	// DefaultListenAddress is the default admin/trigger server listen address.
	// Override via config: listen
	DefaultListenAddress = "0.0.0.0:8085"

	// DefaultDailyAt is the local time of day at which the completed-day
	// export runs.
	// Override via config: schedule.daily_at
	DefaultDailyAt = "00:30"

	// DefaultShutdownTimeout bounds graceful HTTP server shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Storage Defaults
// =============================================================================

const (
	// DefaultS3Endpoint is the default S3 endpoint.
	// Override via config: s3.endpoint
	DefaultS3Endpoint = "s3.amazonaws.com"
)
