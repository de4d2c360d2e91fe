package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2/google"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/food_analysis"
	"github.com/risithcha/nutritrack/pkg/domain/meal_plan"
	"github.com/risithcha/nutritrack/pkg/infrastructure/ai"
	"github.com/risithcha/nutritrack/pkg/infrastructure/auth"
	"github.com/risithcha/nutritrack/pkg/infrastructure/database"
	"github.com/risithcha/nutritrack/pkg/infrastructure/notifications"
	infrapubsub "github.com/risithcha/nutritrack/pkg/infrastructure/pubsub"
	infrasentry "github.com/risithcha/nutritrack/pkg/infrastructure/sentry"
	infrastorage "github.com/risithcha/nutritrack/pkg/infrastructure/storage"
	"github.com/risithcha/nutritrack/pkg/persistence"
	"github.com/risithcha/nutritrack/pkg/realtime"
	"github.com/risithcha/nutritrack/pkg/tracker"
)

// Config holds standard configuration for all services
type Config struct {
	ProjectID     string
	Environment   string
	EnablePublish bool
	ImageBucket   string

	GeminiAPIKey      string
	GeminiModel       string
	ParallelInference bool
	InferenceTimeout  time.Duration

	// FirebaseAPIKey is the web API key used for password sign-in.
	FirebaseAPIKey string

	// LocalDBPath switches persistence to SQLite and LocalBlobRoot switches
	// image storage to the filesystem. Both are for local development.
	LocalDBPath   string
	LocalBlobRoot string

	DebounceWindow time.Duration
	SentryDSN      string
	Release        string
}

// Service holds initialized dependencies
type Service struct {
	DB        shared.Database
	Store     shared.BlobStore
	Pub       shared.Publisher
	Generator shared.Generator
	Auth      shared.Authenticator
	Notifier  shared.NotificationService
	Gateway   *persistence.Gateway
	Tracker   *tracker.Tracker
	Hub       *realtime.Hub
	Config    *Config
	Logger    *slog.Logger

	closers []func() error
}

// LoadEnv reads a .env file from the working directory when there is one.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadConfig reads configuration from environment variables
func LoadConfig(ctx context.Context) *Config {
	return &Config{
		ProjectID:         resolveProjectID(ctx),
		Environment:       envOr("ENVIRONMENT", "development"),
		EnablePublish:     os.Getenv("ENABLE_PUBLISH") == "true",
		ImageBucket:       os.Getenv("GCS_IMAGE_BUCKET"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", ai.DefaultModel),
		ParallelInference: os.Getenv("PARALLEL_INFERENCE") == "true",
		InferenceTimeout:  envDuration("INFERENCE_TIMEOUT", shared.DefaultInferenceTimeout),
		FirebaseAPIKey:    os.Getenv("FIREBASE_API_KEY"),
		LocalDBPath:       os.Getenv("LOCAL_DB_PATH"),
		LocalBlobRoot:     os.Getenv("LOCAL_BLOB_ROOT"),
		DebounceWindow:    envDuration("PERSIST_DEBOUNCE", shared.DefaultDebounceWindow),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		Release:           os.Getenv("RELEASE"),
	}
}

// resolveProjectID prefers GOOGLE_CLOUD_PROJECT, then the project attached to
// Application Default Credentials, then the built-in default.
func resolveProjectID(ctx context.Context) string {
	if id := os.Getenv("GOOGLE_CLOUD_PROJECT"); id != "" {
		return id
	}
	if creds, err := google.FindDefaultCredentials(ctx); err == nil && creds.ProjectID != "" {
		return creds.ProjectID
	}
	return shared.ProjectID
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Cloud Logging keys
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler prefixes each message with the logger's [component].
type ComponentHandler struct {
	slog.Handler
	component string
}

func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithGroup(name), component: h.component}
}

func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	comp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			comp = a.Value.String()
		}
	}
	return &ComponentHandler{Handler: h.Handler.WithAttrs(attrs), component: comp}
}

func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false
		}
		return true
	})
	if comp == "" {
		return h.Handler.Handle(ctx, r)
	}

	// The component attribute stays in the payload as well.
	out := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", comp, r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(a)
		return true
	})
	return h.Handler.Handle(ctx, out)
}

// ParseLevel maps LOG_LEVEL values to slog levels; anything unknown is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger creates a configured logger instance
func NewLogger(serviceName string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, GetSlogHandlerOptions(ParseLevel(os.Getenv("LOG_LEVEL"))))
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes all standard dependencies
func NewService(ctx context.Context, serviceName string) (*Service, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}
	logger := NewLogger(serviceName)
	slog.SetDefault(logger)
	cfg := LoadConfig(ctx)

	logger.Info("Initializing service", "project_id", cfg.ProjectID, "environment", cfg.Environment)

	if err := infrasentry.Init(infrasentry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       serviceName,
		TracesSampleRate: 0.1,
	}, logger); err != nil {
		logger.Warn("Continuing without Sentry", "error", err)
	}

	svc := &Service{Config: cfg, Logger: logger}

	if err := svc.initDatabase(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	if err := svc.initStorage(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	if err := svc.initPublisher(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	svc.initGenerator(ctx)
	if err := svc.initFirebase(ctx); err != nil {
		svc.Close()
		return nil, err
	}

	svc.Gateway = persistence.NewGateway(svc.DB, cfg.DebounceWindow, logger)
	svc.Hub = realtime.NewHub(logger)
	svc.Tracker = tracker.New(tracker.Deps{
		DB:    svc.DB,
		Store: svc.Store,
		Pub:   svc.Pub,
		Analyzer: food_analysis.New(svc.Generator, logger, food_analysis.Config{
			Timeout:  cfg.InferenceTimeout,
			Parallel: cfg.ParallelInference,
		}),
		Planner:     meal_plan.NewPlanner(svc.Generator, logger),
		Gateway:     svc.Gateway,
		Hub:         svc.Hub,
		ImageBucket: cfg.ImageBucket,
		Logger:      logger,
	})

	return svc, nil
}

func (s *Service) initDatabase(ctx context.Context) error {
	if s.Config.LocalDBPath != "" {
		db, err := database.NewSQLiteAdapter(s.Config.LocalDBPath)
		if err != nil {
			s.Logger.Error("SQLite init failed", "error", err)
			return fmt.Errorf("sqlite init: %w", err)
		}
		s.DB = db
		s.closers = append(s.closers, db.Close)
		s.Logger.Info("Database: SQLite", "path", s.Config.LocalDBPath)
		return nil
	}

	client, err := firestore.NewClient(ctx, s.Config.ProjectID)
	if err != nil {
		s.Logger.Error("Firestore init failed", "error", err)
		return fmt.Errorf("firestore init: %w", err)
	}
	s.DB = database.NewFirestoreAdapter(client)
	s.closers = append(s.closers, client.Close)
	return nil
}

func (s *Service) initStorage(ctx context.Context) error {
	if s.Config.LocalBlobRoot != "" {
		s.Store = &infrastorage.LocalAdapter{Root: s.Config.LocalBlobRoot}
		if s.Config.ImageBucket == "" {
			s.Config.ImageBucket = "images"
		}
		s.Logger.Info("Storage: local", "root", s.Config.LocalBlobRoot)
		return nil
	}
	if s.Config.ImageBucket == "" {
		s.Logger.Warn("GCS_IMAGE_BUCKET not set, scanned images will not be stored")
		return nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		s.Logger.Error("Storage init failed", "error", err)
		return fmt.Errorf("storage init: %w", err)
	}
	s.Store = &infrastorage.StorageAdapter{Client: client}
	s.closers = append(s.closers, client.Close)
	return nil
}

func (s *Service) initPublisher(ctx context.Context) error {
	if !s.Config.EnablePublish {
		s.Pub = &infrapubsub.LogPublisher{Logger: s.Logger}
		s.Logger.Info("Pub/Sub: MOCK (LogPublisher)")
		return nil
	}

	client, err := pubsub.NewClient(ctx, s.Config.ProjectID)
	if err != nil {
		s.Logger.Error("PubSub init failed", "error", err)
		return fmt.Errorf("pubsub init: %w", err)
	}
	s.Pub = &infrapubsub.PubSubAdapter{Client: client}
	s.closers = append(s.closers, client.Close)
	s.Logger.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	return nil
}

// initGenerator never fails: without a key every scan takes the fallback
// path and meal plans use the sample plan.
func (s *Service) initGenerator(ctx context.Context) {
	if s.Config.GeminiAPIKey == "" {
		s.Logger.Warn("GEMINI_API_KEY not set, inference disabled")
		s.Generator = ai.Unconfigured{}
		return
	}
	gen, err := ai.NewGeminiGenerator(ctx, s.Config.GeminiAPIKey, s.Config.GeminiModel, s.Logger)
	if err != nil {
		s.Logger.Error("Gemini init failed, inference disabled", "error", err)
		s.Generator = ai.Unconfigured{}
		return
	}
	s.Generator = gen
	s.closers = append(s.closers, gen.Close)
}

func (s *Service) initFirebase(ctx context.Context) error {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: s.Config.ProjectID})
	if err != nil {
		s.Logger.Error("Firebase init failed", "error", err)
		return fmt.Errorf("firebase init: %w", err)
	}

	authenticator, err := auth.NewFirebaseAuthenticator(ctx, app, s.Config.FirebaseAPIKey, s.Logger)
	if err != nil {
		s.Logger.Error("Firebase Auth init failed", "error", err)
		return fmt.Errorf("firebase auth init: %w", err)
	}
	s.Auth = authenticator

	notifier, err := notifications.NewFCMAdapter(ctx, app, s.DB, s.Logger)
	if err != nil {
		// Push is optional; the rest of the service works without it.
		s.Logger.Warn("FCM init failed, push notifications disabled", "error", err)
		return nil
	}
	s.Notifier = notifier
	return nil
}

// Close flushes pending writes and releases clients in reverse order.
func (s *Service) Close() {
	if s.Tracker != nil {
		s.Tracker.Flush()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.Logger.Warn("Close failed", "error", err)
		}
	}
	s.closers = nil
	infrasentry.Flush(2 * time.Second)
}
