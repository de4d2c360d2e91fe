package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/realtime"
	"github.com/risithcha/nutritrack/pkg/tracker"
)

const maxImageBytes = 10 << 20

type server struct {
	tracker *tracker.Tracker
	auth    shared.Authenticator
	hub     *realtime.Hub
	logger  *slog.Logger
}

func newServer(t *tracker.Tracker, a shared.Authenticator, hub *realtime.Hub, logger *slog.Logger) *server {
	return &server{tracker: t, auth: a, hub: hub, logger: logger.With("component", "api")}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/signout", s.handleSignOut)
			r.Get("/ws", s.handleWebsocket)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/profile/timezone", s.handleSetTimezone)
			r.Post("/devices", s.handleRegisterDevice)

			r.Post("/scans", s.handleScan)
			r.Get("/daily", s.handleDaily)
			r.Get("/dashboard", s.handleDashboard)

			r.Get("/history", s.handleHistory)
			r.Delete("/history/{foodID}", s.handleDeleteHistory)

			r.Get("/meal-plan", s.handleGetMealPlan)
			r.Post("/meal-plan", s.handleGenerateMealPlan)
			r.Post("/meal-plan/entries/{entryID}/log", s.handleLogMealPlanEntry)

			r.Get("/water", s.handleWaterSummary)
			r.Post("/water", s.handleAddWater)
			r.Put("/water/goal", s.handleSetWaterGoal)

			r.Get("/weight", s.handleWeightSummary)
			r.Post("/weight", s.handleAddWeight)
			r.Put("/weight/goal", s.handleSetWeightGoal)
		})
	})

	return r
}
