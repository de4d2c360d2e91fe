package intakenotifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/risithcha/nutritrack/pkg/bootstrap"
	"github.com/risithcha/nutritrack/pkg/framework"
	"github.com/risithcha/nutritrack/pkg/testing/mocks"
	"github.com/risithcha/nutritrack/pkg/types"
)

func foodLogged(consumed, target, kcal float64) types.FoodLoggedEvent {
	return types.FoodLoggedEvent{
		UserID: "user-1",
		Food:   types.FoodRecord{ID: "f1", Name: "Pasta", Kcal: kcal},
		Daily:  types.DailyNutrition{ConsumedKcal: consumed, TargetKcal: target, RemainingKcal: target - consumed},
	}
}

func toEvent(t *testing.T, payload interface{}) event.Event {
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
	e.SetSource("//pubsub.googleapis.com/projects/p/topics/topic-food-logged")
	if err := e.SetData("application/json", msg); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCrossedTarget(t *testing.T) {
	tests := []struct {
		name string
		ev   types.FoodLoggedEvent
		want bool
	}{
		{"still under", foodLogged(1500, 2000, 300), false},
		{"lands exactly on target", foodLogged(2000, 2000, 400), true},
		{"crosses over", foodLogged(2100, 2000, 400), true},
		{"already over before", foodLogged(2500, 2000, 200), false},
		{"was exactly on target before", foodLogged(2300, 2000, 300), false},
		{"no target", foodLogged(500, 0, 500), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CrossedTarget(tt.ev); got != tt.want {
				t.Errorf("CrossedTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalMessage(t *testing.T) {
	_, body := goalMessage(foodLogged(2000, 2000, 400))
	if body != "You've had 2,000 of your 2,000 kcal today." {
		t.Errorf("body = %q", body)
	}
	_, body = goalMessage(foodLogged(2150, 2000, 400))
	if body != "You've had 2,150 kcal today, 150 over your 2,000 kcal target." {
		t.Errorf("body = %q", body)
	}
}

func TestNotifyHandler(t *testing.T) {
	fwCtx := &framework.FrameworkContext{Service: &bootstrap.Service{}, Logger: slog.Default()}

	t.Run("sends when the target is crossed", func(t *testing.T) {
		db := &mocks.MockDatabase{
			GetUserDocumentFunc: func(ctx context.Context, userID string) (*types.UserDocument, error) {
				return &types.UserDocument{UserID: userID, FCMTokens: []string{"tok-1", "tok-2"}}, nil
			},
		}
		var sentTokens []string
		var sentTitle string
		notifier := &mocks.MockNotificationService{
			SendPushNotificationFunc: func(ctx context.Context, userID, title, body string, tokens []string, data map[string]string) error {
				sentTitle = title
				sentTokens = tokens
				if data["type"] != "daily_goal_reached" {
					t.Errorf("data type = %q", data["type"])
				}
				return nil
			},
		}

		out, err := notifyHandler(db, notifier)(context.Background(), toEvent(t, foodLogged(2100, 2000, 400)), fwCtx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.(map[string]interface{})["status"] != "sent" {
			t.Errorf("status = %v", out)
		}
		if sentTitle != "Daily goal reached" || len(sentTokens) != 2 {
			t.Errorf("sent %q to %v", sentTitle, sentTokens)
		}
	})

	t.Run("skips when under target", func(t *testing.T) {
		notifier := &mocks.MockNotificationService{
			SendPushNotificationFunc: func(ctx context.Context, userID, title, body string, tokens []string, data map[string]string) error {
				t.Error("should not send")
				return nil
			},
		}
		out, err := notifyHandler(&mocks.MockDatabase{}, notifier)(context.Background(), toEvent(t, foodLogged(800, 2000, 300)), fwCtx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.(map[string]interface{})["status"] != "skipped" {
			t.Errorf("status = %v", out)
		}
	})

	t.Run("skips without devices", func(t *testing.T) {
		db := &mocks.MockDatabase{
			GetUserDocumentFunc: func(ctx context.Context, userID string) (*types.UserDocument, error) {
				return &types.UserDocument{UserID: userID}, nil
			},
		}
		out, err := notifyHandler(db, &mocks.MockNotificationService{})(context.Background(), toEvent(t, foodLogged(2000, 2000, 100)), fwCtx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.(map[string]interface{})["reason"] != "no devices" {
			t.Errorf("out = %v", out)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		ev := foodLogged(2000, 2000, 100)
		ev.UserID = ""
		if _, err := notifyHandler(&mocks.MockDatabase{}, &mocks.MockNotificationService{})(context.Background(), toEvent(t, ev), fwCtx); err == nil {
			t.Error("expected error")
		}
	})
}
