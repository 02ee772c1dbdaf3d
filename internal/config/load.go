package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FILETRACK"

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config validation failed")

// Load configuration from defaults, an optional filetrack.yaml, and
// environment variables. Environment variables take precedence over values
// from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file instead of
// searching for filetrack.yaml. An empty path searches the working directory.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("filetrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// setDefaults registers every key with viper so AutomaticEnv can bind it.
func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.log_format", d.Server.LogFormat)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("upload.max_file_bytes", d.Upload.MaxFileBytes)
	v.SetDefault("upload.max_body_bytes", d.Upload.MaxBodyBytes)

	v.SetDefault("processing.worker_count", d.Processing.WorkerCount)
	v.SetDefault("processing.queue_size", d.Processing.QueueSize)
	v.SetDefault("processing.latency_min", d.Processing.LatencyMin)
	v.SetDefault("processing.latency_max", d.Processing.LatencyMax)
	v.SetDefault("processing.success_ratio", d.Processing.SuccessRatio)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.ttl", d.Store.TTL)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.max_open_conns", d.Store.MaxOpenConns)

	v.SetDefault("poller.interval", d.Poller.Interval)
	v.SetDefault("poller.retry_budget", d.Poller.RetryBudget)

	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.request_timeout", d.Client.RequestTimeout)

	v.SetDefault("sentry.dsn", d.Sentry.DSN)
	v.SetDefault("sentry.environment", d.Sentry.Environment)
	v.SetDefault("sentry.release", d.Sentry.Release)
}
