package dailyrollover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

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
	functions.CloudEvent("DailyRollover", DailyRollover)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx, "daily-rollover")
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// Roller applies the midnight reset.
type Roller interface {
	Rollover(ctx context.Context, userID string) (bool, error)
	RolloverAll(ctx context.Context) (int, error)
	Flush()
}

// DailyRollover is the entry point. It is triggered on a schedule through
// the rollover topic and resets every user whose local day has changed.
func DailyRollover(ctx context.Context, e event.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent("daily-rollover", svc, rolloverHandler(nil))(ctx, e)
}

// rolloverHandler contains the business logic. roller can be injected for
// testing; if nil, the service tracker is used.
func rolloverHandler(roller Roller) framework.HandlerFunc {
	return func(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
		r := roller
		if r == nil {
			r = fwCtx.Service.Tracker
		}

		var req types.RolloverRequest
		if err := framework.DecodePubSubData(e, &req); err != nil && !errors.Is(err, framework.ErrEmptyMessage) {
			return nil, err
		}
		// Writes are debounced; make sure they land before the instance idles.
		defer r.Flush()

		if req.UserID != "" {
			changed, err := r.Rollover(ctx, req.UserID)
			if err != nil {
				return nil, fmt.Errorf("rollover %s: %w", req.UserID, err)
			}
			fwCtx.Logger.Info("Rollover checked", "changed", changed)
			return map[string]interface{}{"user_id": req.UserID, "reset": changed}, nil
		}

		reset, err := r.RolloverAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("rollover sweep: %w", err)
		}
		return map[string]interface{}{"reset": reset}, nil
	}
}
