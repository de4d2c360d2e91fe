package types

import "time"

// FoodLoggedEvent is published after a food record is folded into the day.
type FoodLoggedEvent struct {
	UserID    string         `json:"userId"`
	Food      FoodRecord     `json:"food"`
	Daily     DailyNutrition `json:"dailyNutrition"`
	Timestamp time.Time      `json:"timestamp"`
}

// DayRolledOverEvent is published when a user's daily totals are reset.
type DayRolledOverEvent struct {
	UserID           string    `json:"userId"`
	Day              string    `json:"day"`
	PreviousDay      string    `json:"previousDay,omitempty"`
	PreviousConsumed float64   `json:"previousConsumed"`
	Timestamp        time.Time `json:"timestamp"`
}

// RolloverRequest is the payload of the scheduled rollover trigger. An empty
// UserID means every user.
type RolloverRequest struct {
	UserID string `json:"userId,omitempty"`
}
