package framework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/risithcha/nutritrack/pkg/bootstrap"
	infrasentry "github.com/risithcha/nutritrack/pkg/infrastructure/sentry"
	"github.com/risithcha/nutritrack/pkg/types"
)

// FrameworkContext contains dependencies injected by the framework
type FrameworkContext struct {
	Service *bootstrap.Service
	Logger  *slog.Logger
}

// HandlerFunc is the signature for a cloud function handler
type HandlerFunc func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error)

// WrapCloudEvent wraps a handler with per-invocation logging, panic capture
// and error reporting.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler HandlerFunc) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) error {
		logger := svc.Logger
		if logger == nil {
			logger = bootstrap.NewLogger(serviceName)
		}
		logger = logger.With("event_id", e.ID(), "event_type", e.Type())

		userID := extractUserID(e)
		if userID != "" {
			logger = logger.With("user_id", userID)
		}

		defer infrasentry.RecoverAndCapture(logger)

		start := time.Now()
		logger.Info("Function started")

		outputs, err := handler(ctx, e, &FrameworkContext{Service: svc, Logger: logger})
		if err != nil {
			logger.Error("Function failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			infrasentry.CaptureException(err, map[string]interface{}{
				"user_id":  userID,
				"function": serviceName,
				"event_id": e.ID(),
			}, logger)
			infrasentry.Flush(2 * time.Second)
			return err
		}

		logger.Info("Function completed successfully", "outputs", outputs, "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
}

// ErrEmptyMessage is returned by DecodePubSubData for a message with no body.
var ErrEmptyMessage = errors.New("empty pubsub message")

// DecodePubSubData unmarshals the JSON body of a Pub/Sub-delivered event
// into v.
func DecodePubSubData(e event.Event, v interface{}) error {
	var msg types.PubSubMessage
	if err := e.DataAs(&msg); err != nil {
		return fmt.Errorf("event.DataAs: %w", err)
	}
	if len(msg.Message.Data) == 0 {
		return ErrEmptyMessage
	}
	if err := json.Unmarshal(msg.Message.Data, v); err != nil {
		return fmt.Errorf("decode pubsub data: %w", err)
	}
	return nil
}

// extractUserID pulls userId out of the message body, if there is one.
func extractUserID(e event.Event) string {
	var payload map[string]interface{}
	if err := DecodePubSubData(e, &payload); err != nil {
		return ""
	}
	if uid, ok := payload["userId"].(string); ok {
		return uid
	}
	if uid, ok := payload["user_id"].(string); ok {
		return uid
	}
	return ""
}
