// Package sentryconnect wires error reporting to Sentry. Reporting is
// optional: with no DSN configured every helper is a no-op.
package sentryconnect

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/phrazzld/filetrack/internal/config"
	"github.com/phrazzld/filetrack/internal/redact"
)

// FlushTimeout bounds how long Flush waits for buffered events.
const FlushTimeout = 2 * time.Second

// Init initializes the Sentry client and returns a hub tagged with
// moduleName. It returns a nil hub and no error when cfg.DSN is empty.
func Init(cfg config.SentryConfig, moduleName string) (*sentry.Hub, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrub(event)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %s", redact.Error(err))
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("module", moduleName)
	})
	return hub, nil
}

// CaptureError reports err on hub with the given tags. A nil hub or error
// is ignored.
func CaptureError(hub *sentry.Hub, err error, tags map[string]string) {
	if hub == nil || err == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

// Flush drains buffered events before shutdown.
func Flush(hub *sentry.Hub, logger *slog.Logger) {
	if hub == nil {
		return
	}
	if !hub.Flush(FlushTimeout) {
		logger.Warn("sentry flush timed out", "timeout", FlushTimeout)
	}
}

// scrub redacts messages and exception values before they leave the process.
func scrub(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	event.Message = redact.String(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = redact.String(event.Exception[i].Value)
	}
	return event
}
