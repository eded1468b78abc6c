package sentryutil

import (
	"context"
	"fmt"
	"time"

	"github.com/botshop/go-seabot/service/logger"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

const errorContextName = "error context"

// scrubbedHeaders are replaced with a placeholder before events leave the process.
var scrubbedHeaders = map[string]bool{
	"Authorization":         true,
	"X-Api-Key":             true,
	"X-Signature-Ed25519":   true,
	"X-Signature-Timestamp": true,
}

// ReportRemappedError reports originalErr along with the type of error it was mapped to before being shown to a user.
func ReportRemappedError(ctx context.Context, originalErr error, remappedErr interface{}) {
	hub := SentryHubFromContext(ctx)
	if hub == nil {
		logger.For(ctx).Warnln("could not report error to Sentry because hub is nil")
		return
	}

	// Use a new scope so our error context and tag don't persist beyond this error
	hub.WithScope(func(scope *sentry.Scope) {
		if remappedErr != nil {
			scope.SetContext(errorContextName, sentry.Context{"Mapped": true, "MappedTo": fmt.Sprintf("%T", remappedErr)})
			scope.SetTag("remappedError", "true")
		} else {
			scope.SetContext(errorContextName, sentry.Context{"Mapped": false})
		}

		hub.CaptureException(originalErr)
	})
}

func ReportError(ctx context.Context, err error) {
	ReportRemappedError(ctx, err, nil)
}

// ScrubEventHeaders removes credentials from the request attached to an event.
func ScrubEventHeaders(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}

	scrubbed := make(map[string]string, len(event.Request.Headers))
	for k, v := range event.Request.Headers {
		if scrubbedHeaders[k] {
			scrubbed[k] = "[Filtered]"
		} else {
			scrubbed[k] = v
		}
	}

	event.Request.Headers = scrubbed
	return event
}

// UpdateErrorFingerprints splits events created with errors.New by message, since they otherwise share a type.
func UpdateErrorFingerprints(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event == nil || hint == nil || hint.OriginalException == nil {
		return event
	}

	if fmt.Sprintf("%T", hint.OriginalException) == "*errors.errorString" {
		event.Fingerprint = []string{"{{ default }}", hint.OriginalException.Error()}
	}

	return event
}

// SentryHubFromContext gets a Hub from the supplied context, or from an underlying gin.Context if one is available.
func SentryHubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return nil
	}

	if gc, ok := ctx.(*gin.Context); ok {
		if hub := sentrygin.GetHubFromContext(gc); hub != nil {
			return hub
		}
		if gc.Request == nil {
			return nil
		}
		ctx = gc.Request.Context()
	}

	return sentry.GetHubFromContext(ctx)
}

// RecoverAndRaise reports a panic to Sentry, flushes, and re-panics.
func RecoverAndRaise(ctx context.Context) {
	if err := recover(); err != nil {
		hub := SentryHubFromContext(ctx)
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.Recover(err)
		sentry.Flush(2 * time.Second)
		panic(err)
	}
}
