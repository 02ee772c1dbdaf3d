package config

import (
	"time"

	"github.com/phrazzld/filetrack/internal/domain"
)

// Defaults returns the compiled-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			LogFormat:       "json",
			ShutdownTimeout: 10 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileBytes: domain.MaxUploadSize,
			// Room for multipart framing around a file at the cap.
			MaxBodyBytes: domain.MaxUploadSize + 64*1024,
		},
		Processing: ProcessingConfig{
			WorkerCount:  16,
			QueueSize:    256,
			LatencyMin:   5 * time.Second,
			LatencyMax:   10 * time.Second,
			SuccessRatio: 0.8,
		},
		Store: StoreConfig{
			Driver:       "memory",
			TTL:          0,
			MaxOpenConns: 10,
		},
		Poller: PollerConfig{
			Interval:    2 * time.Second,
			RetryBudget: 3,
		},
		Client: ClientConfig{
			BaseURL:        "http://localhost:8080",
			RequestTimeout: 10 * time.Second,
		},
	}
}
