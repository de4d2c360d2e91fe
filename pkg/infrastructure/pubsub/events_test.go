package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/types"
)

func TestNewCloudEvent(t *testing.T) {
	payload := types.RolloverRequest{UserID: "user-1"}
	e, err := NewCloudEvent(shared.EventSourceTracker, shared.EventTypeDayRolledOver, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("event invalid: %v", err)
	}
	if e.Type() != shared.EventTypeDayRolledOver {
		t.Errorf("type = %q", e.Type())
	}

	var got types.RolloverRequest
	if err := json.Unmarshal(e.Data(), &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got != payload {
		t.Errorf("data = %+v, want %+v", got, payload)
	}
}

func TestLogPublisher(t *testing.T) {
	e, _ := NewCloudEvent(shared.EventSourceTracker, shared.EventTypeFoodLogged, map[string]string{"k": "v"})
	id, err := (&LogPublisher{}).PublishCloudEvent(context.Background(), shared.TopicFoodLogged, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "local-"+e.ID() {
		t.Errorf("id = %q", id)
	}
}
