package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/food_analysis"
	"github.com/risithcha/nutritrack/pkg/domain/meal_plan"
	"github.com/risithcha/nutritrack/pkg/infrastructure/auth"
	"github.com/risithcha/nutritrack/pkg/persistence"
	"github.com/risithcha/nutritrack/pkg/realtime"
	"github.com/risithcha/nutritrack/pkg/testing/mocks"
	"github.com/risithcha/nutritrack/pkg/tracker"
	"github.com/risithcha/nutritrack/pkg/types"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

// jpegHeader is enough for content sniffing to report image/jpeg.
var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type stubAnalyzer struct {
	notFood bool
}

func (a *stubAnalyzer) Analyze(ctx context.Context, ref string, image shared.Image) (*food_analysis.Result, error) {
	if a.notFood {
		return nil, food_analysis.ErrNotFood
	}
	return &food_analysis.Result{
		Record: types.FoodRecord{ID: "food-1", Name: "Banana", Kcal: 105, CarbsG: 27, MealType: types.MealTypeSnack, HealthScore: 8, CapturedAt: testNow},
		State:  food_analysis.StateNormalized,
	}, nil
}

func (a *stubAnalyzer) Tips(ctx context.Context, r types.FoodRecord) []string {
	return []string{"Great source of potassium"}
}

type testEnv struct {
	handler  http.Handler
	analyzer *stubAnalyzer
	auth     *mocks.MockAuthenticator
	tracker  *tracker.Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := &mocks.MockDatabase{}
	gw := persistence.NewGateway(db, time.Hour, slog.Default())
	gw.SetReporter(func(*shared.PersistenceError) {})
	hub := realtime.NewHub(slog.Default())
	analyzer := &stubAnalyzer{}

	tr := tracker.New(tracker.Deps{
		DB:       db,
		Analyzer: analyzer,
		Planner:  meal_plan.NewPlanner(nil, slog.Default()),
		Gateway:  gw,
		Hub:      hub,
		Now:      func() time.Time { return testNow },
	})
	t.Cleanup(tr.Flush)

	authn := &mocks.MockAuthenticator{
		VerifyTokenFunc: func(ctx context.Context, idToken string) (string, error) {
			if idToken == "good-token" {
				return "user-1", nil
			}
			return "", auth.ErrInvalidToken
		},
	}

	return &testEnv{
		handler:  newServer(tr, authn, hub, slog.Default()).routes(),
		analyzer: analyzer,
		auth:     authn,
		tracker:  tr,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer good-token")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	return e.do(t, method, path, strings.NewReader(body), "application/json")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/daily", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/daily", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, codeUnauthorized, decodeError(t, rec).Code)
	})

	t.Run("health needs no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSignUp(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.doJSON(t, http.MethodPost, "/v1/auth/signup", `{"email":"a@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "user-1", resp["userId"])
		assert.Contains(t, resp, "session")
	})

	t.Run("existing email", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.CreateAccountFunc = func(ctx context.Context, email, password string) (string, error) {
			return "", auth.ErrEmailExists
		}
		rec := env.doJSON(t, http.MethodPost, "/v1/auth/signup", `{"email":"a@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid input", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.doJSON(t, http.MethodPost, "/v1/auth/signup", `{"email":"nope","password":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Contains(t, resp.Fields, "email")
		assert.Contains(t, resp.Fields, "password")
	})
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.auth.SignInFunc = func(ctx context.Context, email, password string) (*types.Session, error) {
		return nil, auth.ErrInvalidCredentials
	}
	rec := env.doJSON(t, http.MethodPost, "/v1/auth/signin", `{"email":"a@example.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScan(t *testing.T) {
	t.Run("logs the food", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/v1/scans", bytes.NewReader(jpegHeader), "image/jpeg")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var out tracker.ScanOutcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "Banana", out.Record.Name)
		assert.Equal(t, 105.0, out.Daily.ConsumedKcal)
		assert.False(t, out.Estimated)
	})

	t.Run("not food", func(t *testing.T) {
		env := newTestEnv(t)
		env.analyzer.notFood = true
		rec := env.do(t, http.MethodPost, "/v1/scans", bytes.NewReader(jpegHeader), "application/octet-stream")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, codeNotFood, decodeError(t, rec).Code)
	})

	t.Run("not an image", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/v1/scans", strings.NewReader("hello"), "text/plain")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPut, "/v1/profile", `{"gender":"male","weight":"abc","height":70,"age":0,"activityLevel":"active"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, codeValidation, resp.Code)
	assert.Contains(t, resp.Fields, "weight")
	assert.Contains(t, resp.Fields, "age")

	rec = env.doJSON(t, http.MethodPut, "/v1/profile", `{"gender":"male","weight":180,"height":"70","age":30,"activityLevel":"sedentary"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Profile types.UserProfile    `json:"profile"`
		Daily   types.DailyNutrition `json:"dailyNutrition"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 180.0, body.Profile.Weight)
	assert.Greater(t, body.Daily.TargetKcal, 0.0)

	rec = env.doJSON(t, http.MethodPut, "/v1/profile/timezone", `{"timezone":"Not/AZone"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/v1/history/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/history?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(t, http.MethodPost, "/v1/scans", bytes.NewReader(jpegHeader), "image/jpeg")
	env.do(t, http.MethodPost, "/v1/scans", bytes.NewReader(jpegHeader), "image/jpeg")

	rec = env.do(t, http.MethodGet, "/v1/history?limit=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Foods []types.FoodRecord `json:"foods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Foods, 1)
}

func TestMealPlanEndpoints(t *testing.T) {
	env := newTestEnv(t)

	// No generator configured, so the sample plan is used.
	rec := env.do(t, http.MethodPost, "/v1/meal-plan", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		MealPlan  types.MealPlan `json:"mealPlan"`
		Generated bool           `json:"generated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Generated)
	require.NotEmpty(t, resp.MealPlan.Lunch)

	entry := resp.MealPlan.Lunch[0]
	rec = env.do(t, http.MethodPost, "/v1/meal-plan/entries/"+entry.ID+"/log", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/v1/meal-plan/entries/unknown/log", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaterAndWeightEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/v1/water", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/v1/water/goal", `{"goal":2000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(t, http.MethodPost, "/v1/water", `{"amount":250}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/v1/weight", `{"weight":72.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/dashboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash tracker.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, 250.0, dash.Water.TodayMl)
	require.NotNil(t, dash.Weight.Latest)
	assert.Equal(t, 72.5, *dash.Weight.Latest)
}

func TestWebsocketReceivesDailySnapshot(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?access_token=good-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.MessageDailyUpdated, msg.Type)
}

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) RolloverAll(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestRolloverScheduler(t *testing.T) {
	sweeper := &countingSweeper{}
	sched, err := startRolloverScheduler(context.Background(), sweeper, 50*time.Millisecond, slog.Default())
	require.NoError(t, err)
	defer sched.Shutdown()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}
