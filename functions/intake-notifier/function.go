package intakenotifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/bootstrap"
	"github.com/risithcha/nutritrack/pkg/framework"
	"github.com/risithcha/nutritrack/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.CloudEvent("NotifyIntake", NotifyIntake)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx, "intake-notifier")
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// NotifyIntake is the entry point, subscribed to food.logged events.
func NotifyIntake(ctx context.Context, e event.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent("intake-notifier", svc, notifyHandler(nil, nil))(ctx, e)
}

// CrossedTarget reports whether this food took the day from under the
// target to at or over it.
func CrossedTarget(ev types.FoodLoggedEvent) bool {
	target := ev.Daily.TargetKcal
	if target <= 0 {
		return false
	}
	before := ev.Daily.ConsumedKcal - ev.Food.Kcal
	return before < target && ev.Daily.ConsumedKcal >= target
}

var printer = message.NewPrinter(language.English)

// goalMessage builds the notification title and body.
func goalMessage(ev types.FoodLoggedEvent) (string, string) {
	consumed := int(math.Round(ev.Daily.ConsumedKcal))
	target := int(math.Round(ev.Daily.TargetKcal))
	title := "Daily goal reached"
	body := printer.Sprintf("You've had %d of your %d kcal today.", consumed, target)
	if over := consumed - target; over > 0 {
		body = printer.Sprintf("You've had %d kcal today, %d over your %d kcal target.", consumed, over, target)
	}
	return title, body
}

// notifyHandler contains the business logic. db and notifier can be injected
// for testing; if nil, the service's are used.
func notifyHandler(db shared.Database, notifier shared.NotificationService) framework.HandlerFunc {
	return func(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
		if db == nil {
			db = fwCtx.Service.DB
		}
		if notifier == nil {
			notifier = fwCtx.Service.Notifier
		}

		var ev types.FoodLoggedEvent
		if err := framework.DecodePubSubData(e, &ev); err != nil {
			return nil, err
		}
		if ev.UserID == "" {
			return nil, errors.New("food.logged event without userId")
		}

		if !CrossedTarget(ev) {
			return map[string]interface{}{"status": "skipped", "reason": "target not crossed"}, nil
		}
		if notifier == nil {
			fwCtx.Logger.Warn("Push notifications disabled, skipping")
			return map[string]interface{}{"status": "skipped", "reason": "notifier disabled"}, nil
		}

		doc, err := db.GetUserDocument(ctx, ev.UserID)
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		if len(doc.FCMTokens) == 0 {
			fwCtx.Logger.Info("No registered devices")
			return map[string]interface{}{"status": "skipped", "reason": "no devices"}, nil
		}

		title, body := goalMessage(ev)
		data := map[string]string{
			"type":     "daily_goal_reached",
			"consumed": fmt.Sprintf("%.0f", ev.Daily.ConsumedKcal),
			"target":   fmt.Sprintf("%.0f", ev.Daily.TargetKcal),
		}
		if err := notifier.SendPushNotification(ctx, ev.UserID, title, body, doc.FCMTokens, data); err != nil {
			return nil, fmt.Errorf("send notification: %w", err)
		}

		fwCtx.Logger.Info("Goal notification sent", "devices", len(doc.FCMTokens))
		return map[string]interface{}{"status": "sent", "devices": len(doc.FCMTokens)}, nil
	}
}
