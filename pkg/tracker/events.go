package tracker

import (
	"context"

	shared "github.com/risithcha/nutritrack/pkg"
	infrapubsub "github.com/risithcha/nutritrack/pkg/infrastructure/pubsub"
)

// publish emits a CloudEvent. Failures are logged; events are best effort.
func (t *Tracker) publish(ctx context.Context, topic, eventType string, data interface{}) {
	if t.deps.Pub == nil {
		return
	}
	e, err := infrapubsub.NewCloudEvent(shared.EventSourceTracker, eventType, data)
	if err != nil {
		t.logger.Error("Failed to build event", "type", eventType, "error", err)
		return
	}
	if _, err := t.deps.Pub.PublishCloudEvent(ctx, topic, e); err != nil {
		t.logger.Warn("Failed to publish event", "topic", topic, "type", eventType, "error", err)
	}
}
