package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/risithcha/nutritrack/pkg/bootstrap"
	"github.com/risithcha/nutritrack/pkg/types"
)

func pubsubEvent(t *testing.T, payload interface{}) event.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	var msg types.PubSubMessage
	msg.Message.Data = data

	e := event.New()
	e.SetID("evt-1")
	e.SetType("google.cloud.pubsub.topic.v1.messagePublished")
	e.SetSource("//pubsub.googleapis.com/projects/p/topics/t")
	if err := e.SetData("application/json", msg); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestDecodePubSubData(t *testing.T) {
	e := pubsubEvent(t, types.RolloverRequest{UserID: "user-1"})

	var req types.RolloverRequest
	if err := DecodePubSubData(e, &req); err != nil {
		t.Fatalf("DecodePubSubData: %v", err)
	}
	if req.UserID != "user-1" {
		t.Errorf("UserID = %q", req.UserID)
	}
}

func TestDecodePubSubData_Empty(t *testing.T) {
	e := event.New()
	e.SetID("evt-2")
	e.SetType("t")
	e.SetSource("s")
	_ = e.SetData("application/json", types.PubSubMessage{})

	var req types.RolloverRequest
	if err := DecodePubSubData(e, &req); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestWrapCloudEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := &bootstrap.Service{Logger: logger}

	t.Run("passes user id to the handler logger", func(t *testing.T) {
		buf.Reset()
		var called bool
		fn := WrapCloudEvent("test-fn", svc, func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
			called = true
			if fwCtx.Service != svc {
				t.Error("service not injected")
			}
			fwCtx.Logger.Info("inside")
			return map[string]interface{}{"status": "ok"}, nil
		})

		if err := fn(context.Background(), pubsubEvent(t, map[string]string{"userId": "user-9"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatal("handler not called")
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"user_id":"user-9"`)) {
			t.Errorf("expected user_id in logs, got %s", buf.String())
		}
	})

	t.Run("returns handler errors", func(t *testing.T) {
		want := errors.New("boom")
		fn := WrapCloudEvent("test-fn", svc, func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
			return nil, want
		})
		if err := fn(context.Background(), pubsubEvent(t, map[string]string{})); !errors.Is(err, want) {
			t.Errorf("err = %v, want %v", err, want)
		}
	})
}
