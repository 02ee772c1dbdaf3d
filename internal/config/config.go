package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Upload     UploadConfig     `mapstructure:"upload"     validate:"required"`
	Processing ProcessingConfig `mapstructure:"processing" validate:"required"`
	Store      StoreConfig      `mapstructure:"store"      validate:"required"`
	Poller     PollerConfig     `mapstructure:"poller"     validate:"required"`
	Client     ClientConfig     `mapstructure:"client"     validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format"       validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// UploadConfig contains limits applied to uploaded files.
type UploadConfig struct {
	// MaxFileBytes is the client-side file size cap.
	MaxFileBytes int64 `mapstructure:"max_file_bytes" validate:"required,gt=0"`
	// MaxBodyBytes caps the request body the server is willing to read.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"required,gtefield=MaxFileBytes"`
}

// ProcessingConfig controls the simulated server-side processing.
type ProcessingConfig struct {
	WorkerCount  int           `mapstructure:"worker_count"  validate:"required,gt=0"`
	QueueSize    int           `mapstructure:"queue_size"    validate:"required,gt=0"`
	LatencyMin   time.Duration `mapstructure:"latency_min"   validate:"gte=0"`
	LatencyMax   time.Duration `mapstructure:"latency_max"   validate:"gtefield=LatencyMin"`
	SuccessRatio float64       `mapstructure:"success_ratio" validate:"gte=0,lte=1"`
}

// StoreConfig selects the backend status store.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory badger postgres"`
	Path   string `mapstructure:"path"   validate:"required_if=Driver badger"`
	// DSN is the PostgreSQL connection string for the postgres driver.
	DSN          string `mapstructure:"dsn"            validate:"required_if=Driver postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	// TTL bounds how long finished records are kept by the badger store.
	// Zero keeps them forever.
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// PollerConfig controls the client-side status poller.
type PollerConfig struct {
	Interval    time.Duration `mapstructure:"interval"     validate:"required,gt=0"`
	RetryBudget int           `mapstructure:"retry_budget" validate:"required,gt=0"`
}

// ClientConfig contains the tracking client's connection settings.
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url"        validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"         validate:"omitempty,url"`
	Environment string `mapstructure:"environment"`
	Release     string `mapstructure:"release"`
}
