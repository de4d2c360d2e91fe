package pubsub

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/cloudevents/sdk-go/v2/event"
)

// PubSubAdapter publishes CloudEvents to Google Cloud Pub/Sub in binary mode:
// the event data is the message body and the context attributes travel as
// ce-* message attributes.
type PubSubAdapter struct {
	Client *pubsub.Client
}

func (a *PubSubAdapter) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	topic := a.Client.Topic(topicID)
	res := topic.Publish(ctx, &pubsub.Message{
		Data: e.Data(),
		Attributes: map[string]string{
			"ce-id":          e.ID(),
			"ce-type":        e.Type(),
			"ce-source":      e.Source(),
			"ce-specversion": e.SpecVersion(),
		},
	})
	return res.Get(ctx)
}

// LogPublisher is a publisher for local development that only logs.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Publish (local)", "topic", topicID, "type", e.Type(), "data", string(e.Data()))
	return "local-" + e.ID(), nil
}
