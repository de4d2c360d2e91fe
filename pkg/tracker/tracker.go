// Package tracker owns the in-memory state of each signed-in user and runs
// every user action against it: scans, manual logs, profile edits, meal
// plans, water and weight. Actions for one user are serialised by the
// session mutex; persistence happens in the background.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/food_analysis"
	"github.com/risithcha/nutritrack/pkg/domain/meal_plan"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/persistence"
	"github.com/risithcha/nutritrack/pkg/types"
)

// FoodAnalyzer turns an image into a food record.
type FoodAnalyzer interface {
	Analyze(ctx context.Context, ref string, image shared.Image) (*food_analysis.Result, error)
	Tips(ctx context.Context, r types.FoodRecord) []string
}

type MealPlanner interface {
	Generate(ctx context.Context, profile types.UserProfile, prefs meal_plan.Preferences) (types.MealPlan, bool)
}

// Broadcaster pushes live updates to a user's open connections.
type Broadcaster interface {
	Broadcast(userID, msgType string, data interface{})
}

type Deps struct {
	DB          shared.Database
	Store       shared.BlobStore
	Pub         shared.Publisher
	Analyzer    FoodAnalyzer
	Planner     MealPlanner
	Gateway     *persistence.Gateway
	Hub         Broadcaster
	ImageBucket string
	Logger      *slog.Logger

	Now   func() time.Time
	NewID func() string
}

type Tracker struct {
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(deps Deps) *Tracker {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Gateway == nil {
		deps.Gateway = persistence.NewGateway(deps.DB, shared.DefaultDebounceWindow, deps.Logger)
	}
	return &Tracker{
		deps:     deps,
		logger:   deps.Logger.With("component", "tracker"),
		sessions: make(map[string]*Session),
	}
}

// Flush writes every pending change. Call it before shutdown.
func (t *Tracker) Flush() {
	t.deps.Gateway.Flush()
}

// Evict drops the cached session, e.g. on sign-out. Pending writes for the
// user are flushed so the next load sees them.
func (t *Tracker) Evict(userID string) {
	t.mu.Lock()
	delete(t.sessions, userID)
	t.mu.Unlock()
	t.deps.Gateway.FlushUser(userID)
}

func (t *Tracker) cached(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[userID]
	return ok
}

// acquire returns the user's session, creating it if needed, and takes a
// reference on it. pin marks the session as used by a user request.
func (t *Tracker) acquire(userID string, pin bool) (s *Session, created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[userID]
	if !ok {
		s = &Session{userID: userID}
		t.sessions[userID] = s
	}
	s.refs++
	if pin {
		s.pinned = true
	}
	return s, !ok
}

// release drops a reference. With evict set, the session is removed from the
// cache only if nobody else holds it and no user request has touched it; its
// pending writes are then flushed so a later load sees them.
func (t *Tracker) release(s *Session, evict bool) {
	t.mu.Lock()
	s.refs--
	evicted := evict && s.refs == 0 && !s.pinned && t.sessions[s.userID] == s
	if evicted {
		delete(t.sessions, s.userID)
	}
	t.mu.Unlock()

	if evicted {
		t.deps.Gateway.FlushUser(s.userID)
	}
}

// withSession runs fn with the user's session locked, loading it on first use
// and rolling the day over when the local date has changed.
func (t *Tracker) withSession(ctx context.Context, userID string, fn func(s *Session) error) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", shared.ErrPermissionDenied)
	}
	s, _ := t.acquire(userID, true)
	defer t.release(s, false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := t.load(ctx, s); err != nil {
			return err
		}
	}
	t.ensureToday(ctx, s)
	return fn(s)
}

// load restores the session from the stored document, creating the document
// with defaults when the user has none yet. The calorie target is always
// recomputed from the profile rather than trusted from storage.
func (t *Tracker) load(ctx context.Context, s *Session) error {
	doc, err := t.deps.DB.GetUserDocument(ctx, s.userID)
	if errors.Is(err, shared.ErrNotFound) {
		t.logger.Info("User document missing, creating defaults", "user_id", s.userID)
		doc = t.newDocument(s.userID, "")
		if err := t.deps.DB.SetUserDocument(ctx, doc); err != nil {
			t.logger.Error("Failed to create user document", "user_id", s.userID, "error", err)
		}
	} else if err != nil {
		return fmt.Errorf("load user %s: %w", s.userID, err)
	}

	s.restore(doc)
	s.loaded = true
	t.logger.Debug("Session loaded", "user_id", s.userID, "last_reset_date", s.day.LastResetDate)
	return nil
}

func (t *Tracker) newDocument(userID, email string) *types.UserDocument {
	profile := types.DefaultProfile()
	day := nutrition.NewDailyState(profile)
	now := t.deps.Now()
	return &types.UserDocument{
		UserID:         userID,
		Email:          email,
		Profile:        &profile,
		DailyNutrition: day.Nutrition,
		MealPlan:       types.EmptyMealPlan(),
		FoodHistory:    []types.FoodRecord{},
		ScannedFoods:   []types.FoodRecord{},
		WaterEntries:   []types.WaterEntry{},
		WeightEntries:  []types.WeightEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateAccountDocument writes the initial document for a new account. A
// failure is logged and not returned: the document is created again on first
// load.
func (t *Tracker) CreateAccountDocument(ctx context.Context, userID, email string) {
	if err := t.deps.DB.SetUserDocument(ctx, t.newDocument(userID, email)); err != nil {
		t.logger.Warn("Failed to create initial user document", "user_id", userID, "error", err)
	}
}

func (t *Tracker) location(s *Session) *time.Location {
	return nutrition.LoadLocation(s.timezone)
}

func (t *Tracker) today(s *Session) string {
	return nutrition.LocalDay(t.deps.Now(), t.location(s))
}

func (t *Tracker) scheduleDaily(s *Session) {
	t.deps.Gateway.Schedule(s.userID, persistence.KindDaily, map[string]interface{}{
		shared.FieldDailyNutrition: s.day.Nutrition,
		shared.FieldScannedFoods:   append([]types.FoodRecord{}, s.day.ScannedFoods...),
		shared.FieldLastResetDate:  s.day.LastResetDate,
	})
}

func (t *Tracker) broadcast(userID, msgType string, data interface{}) {
	if t.deps.Hub != nil {
		t.deps.Hub.Broadcast(userID, msgType, data)
	}
}
