// Package persistence writes user state to the document store in the
// background. Field updates are debounced per (user, kind) so a burst of
// changes costs one write; appends are written straight away. Failed writes
// are retried once, then logged and reported. Callers never see the error and
// local state is never rolled back.
package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/infrastructure/sentry"
)

// Kind groups fields that are debounced together.
type Kind string

const (
	KindDaily    Kind = "daily"
	KindProfile  Kind = "profile"
	KindMealPlan Kind = "meal_plan"
	KindTracking Kind = "tracking"
)

const writeTimeout = 15 * time.Second

// Reporter receives writes that failed after the retry.
type Reporter func(err *shared.PersistenceError)

type key struct {
	userID string
	kind   Kind
}

type pendingWrite struct {
	timer  *time.Timer
	fields map[string]interface{}
}

type Gateway struct {
	db     shared.Database
	window time.Duration
	logger *slog.Logger
	report Reporter

	mu       sync.Mutex
	pending  map[key]*pendingWrite
	inflight sync.WaitGroup
}

func NewGateway(db shared.Database, window time.Duration, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "persistence")
	return &Gateway{
		db:      db,
		window:  window,
		logger:  logger,
		pending: make(map[key]*pendingWrite),
		report: func(err *shared.PersistenceError) {
			sentry.CaptureException(err, map[string]interface{}{"user_id": err.UserID, "op": err.Op}, logger)
		},
	}
}

// SetReporter replaces the default Sentry reporter.
func (g *Gateway) SetReporter(r Reporter) {
	g.report = r
}

// Schedule queues a field update. Fields scheduled for the same user and
// kind within the window are merged, later values winning, and written once
// the window has passed without another change.
func (g *Gateway) Schedule(userID string, kind Kind, fields map[string]interface{}) {
	k := key{userID: userID, kind: kind}

	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.pending[k]; ok {
		for f, v := range fields {
			p.fields[f] = v
		}
		// A timer that already fired is about to write p with these fields.
		if p.timer.Stop() {
			p.timer.Reset(g.window)
		}
		return
	}

	p := &pendingWrite{fields: make(map[string]interface{}, len(fields))}
	for f, v := range fields {
		p.fields[f] = v
	}
	g.inflight.Add(1)
	p.timer = time.AfterFunc(g.window, func() { g.fire(k) })
	g.pending[k] = p
}

func (g *Gateway) fire(k key) {
	g.mu.Lock()
	p, ok := g.pending[k]
	if ok {
		delete(g.pending, k)
	}
	g.mu.Unlock()
	if !ok {
		return
	}
	defer g.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	g.write(ctx, k.userID, "update:"+string(k.kind), func(ctx context.Context) error {
		return g.db.UpdateUserFields(ctx, k.userID, p.fields)
	})
}

// Append writes one array element without waiting for the debounce window.
// The write runs in the background and outlives the caller's context.
func (g *Gateway) Append(ctx context.Context, userID, field string, value interface{}) {
	g.Do(ctx, userID, "append:"+field, func(ctx context.Context) error {
		return g.db.AppendToArrayField(ctx, userID, field, value)
	})
}

// Do runs an arbitrary write in the background under the retry and
// reporting policy.
func (g *Gateway) Do(ctx context.Context, userID, op string, fn func(ctx context.Context) error) {
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		g.write(wctx, userID, op, fn)
	}()
}

func (g *Gateway) write(ctx context.Context, userID, op string, fn func(ctx context.Context) error) {
	err := fn(ctx)
	if err == nil {
		return
	}
	g.logger.Warn("Write failed, retrying", "user_id", userID, "op", op, "error", err)

	if err = fn(ctx); err == nil {
		return
	}

	perr := &shared.PersistenceError{UserID: userID, Op: op, Err: err}
	g.logger.Error("Write failed after retry", "user_id", userID, "op", op, "error", err)
	if g.report != nil {
		g.report(perr)
	}
}

// Flush writes every pending update now and waits for in-flight writes.
func (g *Gateway) Flush() {
	g.flushWhere(func(key) bool { return true })
	g.inflight.Wait()
}

// FlushUser writes the user's pending updates now.
func (g *Gateway) FlushUser(userID string) {
	g.flushWhere(func(k key) bool { return k.userID == userID })
}

func (g *Gateway) flushWhere(match func(key) bool) {
	g.mu.Lock()
	var due []key
	for k, p := range g.pending {
		if match(k) && p.timer.Stop() {
			due = append(due, k)
		}
	}
	g.mu.Unlock()

	for _, k := range due {
		g.fire(k)
	}
}

// Pending reports how many debounced writes are waiting.
func (g *Gateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
