package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/types"
)

func newTestAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	a, err := NewSQLiteAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSQLiteAdapter_GetMissing(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.GetUserDocument(context.Background(), "nobody")
	assert.True(t, errors.Is(err, shared.ErrNotFound), "got %v", err)
}

func TestSQLiteAdapter_SetAndUpdate(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	profile := types.DefaultProfile()
	require.NoError(t, a.SetUserDocument(ctx, &types.UserDocument{
		UserID:        "user-1",
		Email:         "a@example.com",
		Profile:       &profile,
		MealPlan:      types.EmptyMealPlan(),
		LastResetDate: "2024-01-01",
	}))

	daily := types.DailyNutrition{ConsumedKcal: 95, TargetKcal: 2123, RemainingKcal: 2028}
	require.NoError(t, a.UpdateUserFields(ctx, "user-1", map[string]interface{}{
		shared.FieldDailyNutrition: daily,
		shared.FieldLastResetDate:  "2024-01-02",
	}))

	doc, err := a.GetUserDocument(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", doc.Email)
	assert.Equal(t, daily, doc.DailyNutrition)
	assert.Equal(t, "2024-01-02", doc.LastResetDate)
	require.NotNil(t, doc.Profile)
	assert.Equal(t, profile, *doc.Profile)
	assert.False(t, doc.UpdatedAt.IsZero())
}

func TestSQLiteAdapter_ArrayFields(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	for _, f := range []types.FoodRecord{
		{ID: "f1", Name: "Apple", Kcal: 95, CapturedAt: now},
		{ID: "f2", Name: "Toast", Kcal: 120, CapturedAt: now.Add(time.Hour)},
	} {
		require.NoError(t, a.AppendToArrayField(ctx, "user-1", shared.FieldFoodHistory, f))
	}
	require.NoError(t, a.AppendToArrayField(ctx, "user-1", shared.FieldFCMTokens, "tok-a"))
	require.NoError(t, a.AppendToArrayField(ctx, "user-1", shared.FieldFCMTokens, "tok-b"))
	require.NoError(t, a.AppendToArrayField(ctx, "user-1", shared.FieldFCMTokens, "tok-a"))

	doc, err := a.GetUserDocument(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, doc.FoodHistory, 2)
	assert.Equal(t, []string{"tok-a", "tok-b"}, doc.FCMTokens)

	require.NoError(t, a.RemoveFoodHistoryEntry(ctx, "user-1", "f1"))
	require.NoError(t, a.RemoveFromArrayField(ctx, "user-1", shared.FieldFCMTokens, "tok-a"))

	doc, err = a.GetUserDocument(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, doc.FoodHistory, 1)
	assert.Equal(t, "f2", doc.FoodHistory[0].ID)
	assert.Equal(t, []string{"tok-b"}, doc.FCMTokens)
}

func TestSQLiteAdapter_RemoveFromMissingDocument(t *testing.T) {
	a := newTestAdapter(t)

	err := a.RemoveFoodHistoryEntry(context.Background(), "nobody", "f1")
	assert.True(t, errors.Is(err, shared.ErrNotFound), "got %v", err)
}

func TestSQLiteAdapter_ListUserIDs(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, a.SetUserDocument(ctx, &types.UserDocument{UserID: id}))
	}

	ids, err := a.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
