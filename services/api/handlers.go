package main

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/meal_plan"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	infrastorage "github.com/risithcha/nutritrack/pkg/infrastructure/storage"
)

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// pathParam binds a chi path parameter the way generated server code does.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, chi.URLParam(r, name), &v)
	return v, err
}

// --- Auth ---

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentials) validate() error {
	fields := map[string]string{}
	if !strings.Contains(c.Email, "@") {
		fields["email"] = "Please enter a valid email"
	}
	if c.Password == "" {
		fields["password"] = "Please enter a password"
	}
	if len(fields) > 0 {
		return &nutrition.ValidationError{Fields: fields}
	}
	return nil
}

func (s *server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	uid, err := s.auth.CreateAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.tracker.CreateAccountDocument(r.Context(), uid, req.Email)

	resp := map[string]interface{}{"userId": uid}
	if session, err := s.auth.SignIn(r.Context(), req.Email, req.Password); err == nil {
		resp["session"] = session
	} else {
		s.logger.Warn("Sign-in after sign-up failed", "user_id", uid, "error", err)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	uid := userIDFrom(r.Context())
	if err := s.auth.SignOut(r.Context(), uid); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.tracker.Flush()
	s.tracker.Evict(uid)
	w.WriteHeader(http.StatusNoContent)
}

// --- Profile ---

// formValue accepts a JSON string or a bare number so the profile form can
// be posted either way. Parsing and validation happen in nutrition.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = formValue(s)
		return nil
	}
	*v = formValue(strings.TrimSpace(string(b)))
	return nil
}

type profileRequest struct {
	Gender        formValue `json:"gender"`
	Weight        formValue `json:"weight"`
	Height        formValue `json:"height"`
	Age           formValue `json:"age"`
	ActivityLevel formValue `json:"activityLevel"`
}

func (s *server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.tracker.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	profile, err := nutrition.ParseProfileInput(nutrition.ProfileInput{
		Gender:        string(req.Gender),
		Weight:        string(req.Weight),
		Height:        string(req.Height),
		Age:           string(req.Age),
		ActivityLevel: string(req.ActivityLevel),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	daily, err := s.tracker.UpdateProfile(r.Context(), userIDFrom(r.Context()), profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profile": profile, "dailyNutrition": daily})
}

func (s *server) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Timezone string `json:"timezone"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := s.tracker.SetTimezone(r.Context(), userIDFrom(r.Context()), req.Timezone); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := s.tracker.RegisterDevice(r.Context(), userIDFrom(r.Context()), req.Token); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Food ---

// readImage accepts either a multipart upload in the "image" field or a raw
// image body.
func readImage(r *http.Request) (shared.Image, error) {
	var (
		data     []byte
		mimeType string
		err      error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, ferr := r.FormFile("image")
		if ferr != nil {
			return shared.Image{}, errors.New("missing image field")
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		mimeType = header.Header.Get("Content-Type")
	} else {
		data, err = io.ReadAll(r.Body)
		mimeType = mediaType
	}
	if err != nil {
		return shared.Image{}, errors.New("image too large or unreadable")
	}
	if len(data) == 0 {
		return shared.Image{}, errors.New("empty image")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = infrastorage.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return shared.Image{}, errors.New("unsupported image type")
	}
	return shared.Image{MIMEType: mimeType, Data: data}, nil
}

func (s *server) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	img, err := readImage(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	out, err := s.tracker.ScanFood(r.Context(), userIDFrom(r.Context()), img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *server) handleDaily(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Daily(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.tracker.Dashboard(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		badRequest(w, "Invalid limit")
		return
	}

	history, err := s.tracker.History(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit != nil && *limit >= 0 && *limit < len(history) {
		history = history[:*limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"foods": history})
}

func (s *server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	foodID, err := pathParam(r, "foodID")
	if err != nil {
		badRequest(w, "Invalid food id")
		return
	}
	if err := s.tracker.DeleteHistoryEntry(r.Context(), userIDFrom(r.Context()), foodID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Meal plan ---

func (s *server) handleGetMealPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.tracker.MealPlan(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *server) handleGenerateMealPlan(w http.ResponseWriter, r *http.Request) {
	prefs := meal_plan.Preferences{}
	if err := decodeBody(r, &prefs); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "Invalid preferences")
		return
	}

	plan, generated, err := s.tracker.GenerateMealPlan(r.Context(), userIDFrom(r.Context()), prefs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"mealPlan": plan, "generated": generated})
}

func (s *server) handleLogMealPlanEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathParam(r, "entryID")
	if err != nil {
		badRequest(w, "Invalid entry id")
		return
	}
	record, daily, err := s.tracker.AddMealPlanEntry(r.Context(), userIDFrom(r.Context()), entryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"food": record, "dailyNutrition": daily})
}

// --- Water & weight ---

type amountRequest struct {
	Amount formValue `json:"amount"`
}

type goalRequest struct {
	Goal formValue `json:"goal"`
}

func (s *server) handleWaterSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.tracker.WaterSummary(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *server) handleAddWater(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	amount, err := nutrition.ParseAmount("amount", string(req.Amount))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.tracker.AddWater(r.Context(), userIDFrom(r.Context()), amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

func (s *server) handleSetWaterGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	goal, err := nutrition.ParseAmount("goal", string(req.Goal))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.tracker.SetWaterGoal(r.Context(), userIDFrom(r.Context()), goal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *server) handleWeightSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.tracker.WeightSummary(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *server) handleAddWeight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight formValue `json:"weight"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	weight, err := nutrition.ParseAmount("weight", string(req.Weight))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.tracker.AddWeight(r.Context(), userIDFrom(r.Context()), weight)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

func (s *server) handleSetWeightGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	goal, err := nutrition.ParseAmount("goal", string(req.Goal))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.tracker.SetWeightGoal(r.Context(), userIDFrom(r.Context()), goal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
