package nutrition

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/risithcha/nutritrack/pkg/types"
)

// ValidationError carries one message per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProfileInput is the raw, user-entered profile form.
type ProfileInput struct {
	Gender        string `json:"gender"`
	Weight        string `json:"weight"`
	Height        string `json:"height"`
	Age           string `json:"age"`
	ActivityLevel string `json:"activityLevel"`
}

// ParseProfileInput validates a profile form and converts it into a profile.
func ParseProfileInput(in ProfileInput) (types.UserProfile, error) {
	errs := map[string]string{}
	var p types.UserProfile

	if w, ok := parsePositive(in.Weight); ok {
		p.Weight = w
	} else {
		errs["weight"] = "Please enter a valid weight"
	}

	if h, ok := parsePositive(in.Height); ok {
		p.Height = h
	} else {
		errs["height"] = "Please enter a valid height"
	}

	// Age is truncated like an integer parse, so "0.5" is rejected.
	if a, ok := parsePositive(in.Age); ok && int(a) > 0 {
		p.AgeYears = int(a)
	} else {
		errs["age"] = "Please enter a valid age"
	}

	if g, ok := ParseGender(in.Gender); ok {
		p.Gender = g
	} else {
		errs["gender"] = "Please select a gender"
	}

	if lvl, ok := ParseActivityLevel(in.ActivityLevel); ok {
		p.ActivityLevel = lvl
	} else {
		errs["activityLevel"] = "Please select an activity level"
	}

	if len(errs) > 0 {
		return types.UserProfile{}, &ValidationError{Fields: errs}
	}
	return p, nil
}

// ParseAmount validates a single strictly positive numeric entry such as a
// water amount or a weigh-in.
func ParseAmount(field, raw string) (float64, error) {
	v, ok := parsePositive(raw)
	if !ok {
		return 0, &ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("Please enter a valid %s", field),
		}}
	}
	return v, nil
}

// ValidateProfile checks an already typed profile.
func ValidateProfile(p types.UserProfile) error {
	errs := map[string]string{}
	if p.Weight <= 0 {
		errs["weight"] = "Please enter a valid weight"
	}
	if p.Height <= 0 {
		errs["height"] = "Please enter a valid height"
	}
	if p.AgeYears <= 0 {
		errs["age"] = "Please enter a valid age"
	}
	if _, ok := ParseGender(string(p.Gender)); !ok {
		errs["gender"] = "Please select a gender"
	}
	if _, ok := ActivityMultipliers[p.ActivityLevel]; !ok {
		errs["activityLevel"] = "Please select an activity level"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func ParseGender(s string) (types.Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return types.GenderMale, true
	case "female":
		return types.GenderFemale, true
	case "other":
		return types.GenderOther, true
	}
	return "", false
}

func ParseActivityLevel(s string) (types.ActivityLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sedentary":
		return types.ActivitySedentary, true
	case "light":
		return types.ActivityLight, true
	case "moderate":
		return types.ActivityModerate, true
	case "active":
		return types.ActivityActive, true
	case "veryactive", "very_active", "very active":
		return types.ActivityVeryActive, true
	}
	return "", false
}

func parsePositive(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
