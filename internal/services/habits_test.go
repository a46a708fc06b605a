package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stridestreak/internal/engine"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

func TestHabitService_CreateValidates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")

	cases := []struct {
		name string
		in   HabitInput
	}{
		{"missing title", HabitInput{Title: "  ", Frequency: "daily"}},
		{"bad frequency", HabitInput{Title: "Run", Frequency: "hourly"}},
		{"bad reminder", HabitInput{Title: "Run", Frequency: "daily", ReminderTime: "25:00"}},
		{"line break in title", HabitInput{Title: "Run\r\nX-Injected: yes", Frequency: "daily"}},
		{"nul in title", HabitInput{Title: "Run\x00", Frequency: "daily"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.habits.Create(ctx, u.ID, tc.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	h, err := e.habits.Create(ctx, u.ID, HabitInput{Title: " Run ", Frequency: "weekly", ReminderTime: "07:30"})
	require.NoError(t, err)
	assert.Equal(t, "Run", h.Title)
	assert.Equal(t, models.FrequencyWeekly, h.Frequency)
	require.NotNil(t, h.ReminderTime)
	assert.Equal(t, "07:30:00", *h.ReminderTime)
	assert.True(t, h.IsActive)
	assert.Zero(t, h.CurrentStreak)
}

func TestHabitService_UpdatePatch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	h, err := e.habits.Create(ctx, u.ID, HabitInput{Title: "Run", Frequency: "daily", ReminderTime: "06:00:00"})
	require.NoError(t, err)

	title := "Morning run"
	off := false
	got, err := e.habits.Update(ctx, u.ID, h.ID, HabitPatch{Title: &title, IsActive: &off, SetReminder: true})
	require.NoError(t, err)
	assert.Equal(t, "Morning run", got.Title)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.ReminderTime)
	assert.Equal(t, models.FrequencyDaily, got.Frequency)

	crlf := "Run\r\nBcc: eve@example.com"
	_, err = e.habits.Update(ctx, u.ID, h.ID, HabitPatch{Title: &crlf})
	assert.ErrorIs(t, err, ErrValidation)

	bad := "yearly"
	_, err = e.habits.Update(ctx, u.ID, h.ID, HabitPatch{Frequency: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	other := e.register(t, "bob")
	_, err = e.habits.Update(ctx, other.ID, h.ID, HabitPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHabitService_CompleteScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	h := e.habit(t, u.ID, "Run", "daily")

	// day 1
	res, err := e.habits.Complete(ctx, u.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.Equal(t, engine.Award{PointsEarned: 10, TotalPoints: 10, Level: 1}, res.Award)

	// day 2
	e.clock.AddDays(1)
	res, err = e.habits.Complete(ctx, u.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Habit.CurrentStreak)
	assert.Equal(t, 2, res.Habit.LongestStreak)
	assert.Equal(t, 20, res.PointsEarned)
	assert.Equal(t, 30, res.TotalPoints)

	// day 2 again, later in the day
	e.clock.Advance(3 * time.Hour)
	_, err = e.habits.Complete(ctx, u.ID, h.ID)
	assert.ErrorIs(t, err, engine.ErrAlreadyCompletedToday)

	// skip day 3, complete on day 4
	e.clock.AddDays(2)
	res, err = e.habits.Complete(ctx, u.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.Equal(t, 2, res.Habit.LongestStreak)
	assert.Equal(t, 40, res.TotalPoints)

	history, err := e.habits.Completions(ctx, u.ID, h.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	user, err := e.accounts.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, user.Points)
	assert.Equal(t, 1, user.Level)
}

func TestHabitService_CompleteRejections(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	h := e.habit(t, ada.ID, "Run", "daily")

	_, err := e.habits.Complete(ctx, bob.ID, h.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	off := false
	_, err = e.habits.Update(ctx, ada.ID, h.ID, HabitPatch{IsActive: &off})
	require.NoError(t, err)
	_, err = e.habits.Complete(ctx, ada.ID, h.ID)
	assert.ErrorIs(t, err, ErrHabitInactive)

	history, err := e.habits.Completions(ctx, ada.ID, h.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHabitService_LevelRisesWithPoints(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	h := e.habit(t, u.ID, "Run", "daily")
	require.NoError(t, e.store.UpdateUserProgress(ctx, u.ID, 950, 1))
	e.setStreak(t, u.ID, h.ID, 20, monday.AddDate(0, 0, -1))

	res, err := e.habits.Complete(ctx, u.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, res.Habit.CurrentStreak)
	assert.Equal(t, 100, res.PointsEarned)
	assert.Equal(t, 1050, res.TotalPoints)
	assert.Equal(t, 2, res.Level)
}

func TestHabitService_ConcurrentCompletionsAwardOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	h := e.habit(t, u.ID, "Run", "daily")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.habits.Complete(ctx, u.ID, h.ID)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, engine.ErrAlreadyCompletedToday)
	}
	assert.Equal(t, 1, ok)

	history, err := e.habits.Completions(ctx, u.ID, h.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	user, err := e.accounts.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, user.Points)
}

func TestHabitService_Stats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")

	empty, err := e.habits.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.Stats{}, empty)

	run := e.habit(t, u.ID, "Run", "daily")
	e.habit(t, u.ID, "Review", "weekly")
	_, err = e.habits.Complete(ctx, u.ID, run.ID)
	require.NoError(t, err)
	e.clock.AddDays(1)
	_, err = e.habits.Complete(ctx, u.ID, run.ID)
	require.NoError(t, err)

	stats, err := e.habits.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalHabits)
	assert.Equal(t, 2, stats.ActiveHabits)
	assert.Equal(t, 2, stats.TotalStreaks)
	assert.Equal(t, 2, stats.LongestStreak)
	// 2 completions over 30 + 4 possible
	assert.InDelta(t, 5.88, stats.CompletionRate30d, 1e-9)

	// completions age out of the window
	e.clock.AddDays(31)
	stats, err = e.habits.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.CompletionRate30d)
}

func TestHabitService_DeleteRemovesHistory(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	h := e.habit(t, u.ID, "Run", "daily")
	_, err := e.habits.Complete(ctx, u.ID, h.ID)
	require.NoError(t, err)

	require.NoError(t, e.habits.Delete(ctx, u.ID, h.ID))
	_, err = e.habits.Get(ctx, u.ID, h.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.habits.Completions(ctx, u.ID, h.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
