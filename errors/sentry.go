package errors

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

// CloseSentryTimeout is the timeout for flushing Sentry events before shutdown.
const CloseSentryTimeout = 2 * time.Second

var sentryEnabled bool

// InitializeSentry initializes the Sentry SDK with the provided configuration.
func InitializeSentry(config *schema.SentryConfig) error {
	if config == nil || !config.Enabled {
		return nil
	}

	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		Debug:            config.Debug,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	for key, value := range config.Tags {
		sentry.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag(key, value)
		})
	}

	sentryEnabled = true
	return nil
}

// CloseSentry flushes any pending Sentry events.
func CloseSentry() {
	if !sentryEnabled {
		return
	}
	sentry.Flush(CloseSentryTimeout)
}

// CaptureError reports an error to Sentry if it has been initialized.
// The report is built by cockroachdb/errors, which keeps only safe details.
func CaptureError(err error) {
	if err == nil || !sentryEnabled {
		return
	}

	event, extraDetails := errors.BuildSentryReport(err)
	if event.Tags == nil {
		event.Tags = make(map[string]string)
	}

	hub := sentry.CurrentHub()
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extraDetails {
			if contextMap, ok := value.(map[string]interface{}); ok {
				scope.SetContext(key, contextMap)
			}
		}

		for _, hint := range errors.GetAllHints(err) {
			scope.AddBreadcrumb(&sentry.Breadcrumb{
				Type:     "info",
				Category: "hint",
				Message:  hint,
				Level:    sentry.LevelInfo,
			}, 100)
		}

		if exitCode := GetExitCode(err); exitCode != ExitCodeFailure {
			event.Tags["exit_code"] = fmt.Sprintf("%d", exitCode)
		}

		hub.CaptureEvent(event)
	})
}
