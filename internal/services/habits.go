package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"stridestreak/internal/clock"
	"stridestreak/internal/engine"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

const maxHabitTitle = 100

type HabitService struct {
	store  *store.Store
	clock  clock.Clock
	logger *zap.Logger
}

func NewHabitService(s *store.Store, c clock.Clock, logger *zap.Logger) *HabitService {
	return &HabitService{store: s, clock: c, logger: logger}
}

// HabitInput carries a new habit.
type HabitInput struct {
	Title        string
	Description  string
	Frequency    string
	ReminderTime string
}

// HabitPatch carries a partial update. Nil fields are left alone. When
// SetReminder is true, ReminderTime replaces the stored value and an empty
// string clears it.
type HabitPatch struct {
	Title        *string
	Description  *string
	Frequency    *string
	SetReminder  bool
	ReminderTime string
	IsActive     *bool
}

// CompletionResult is what a successful completion reports.
type CompletionResult struct {
	Habit models.Habit `json:"habit"`
	engine.Award
}

// parseReminderTime accepts HH:MM:SS or HH:MM and normalizes to HH:MM:SS.
func parseReminderTime(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.Format("15:04:05")
			return &out, nil
		}
	}
	return nil, invalid("reminder_time must be HH:MM:SS or HH:MM")
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title is required")
	}
	if len([]rune(title)) > maxHabitTitle {
		return "", invalid("title must be at most %d characters", maxHabitTitle)
	}
	if strings.ContainsFunc(title, unicode.IsControl) {
		return "", invalid("title must not contain control characters")
	}
	return title, nil
}

func (s *HabitService) Create(ctx context.Context, userID int, in HabitInput) (models.Habit, error) {
	title, err := validTitle(in.Title)
	if err != nil {
		return models.Habit{}, err
	}
	freq, err := models.ParseFrequency(in.Frequency)
	if err != nil {
		return models.Habit{}, invalid("frequency must be daily, weekly or monthly")
	}
	reminder, err := parseReminderTime(in.ReminderTime)
	if err != nil {
		return models.Habit{}, err
	}

	h := models.Habit{
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Frequency:    freq,
		ReminderTime: reminder,
		CreatedAt:    s.clock.Now(),
		IsActive:     true,
	}
	if err := s.store.CreateHabit(ctx, &h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *HabitService) Get(ctx context.Context, userID, habitID int) (models.Habit, error) {
	return s.store.GetHabit(ctx, userID, habitID)
}

func (s *HabitService) List(ctx context.Context, userID int) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, userID)
}

func (s *HabitService) Update(ctx context.Context, userID, habitID int, p HabitPatch) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, userID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if p.Title != nil {
		if h.Title, err = validTitle(*p.Title); err != nil {
			return models.Habit{}, err
		}
	}
	if p.Description != nil {
		h.Description = strings.TrimSpace(*p.Description)
	}
	if p.Frequency != nil {
		if h.Frequency, err = models.ParseFrequency(*p.Frequency); err != nil {
			return models.Habit{}, invalid("frequency must be daily, weekly or monthly")
		}
	}
	if p.SetReminder {
		if h.ReminderTime, err = parseReminderTime(p.ReminderTime); err != nil {
			return models.Habit{}, err
		}
	}
	if p.IsActive != nil {
		h.IsActive = *p.IsActive
	}
	if err := s.store.UpdateHabitDetails(ctx, h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *HabitService) Delete(ctx context.Context, userID, habitID int) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		return q.DeleteHabit(ctx, userID, habitID)
	})
}

// Complete records today's completion and awards points in one transaction.
// The habit row is written with a compare-and-swap on its version, so of two
// concurrent completions for the same day only one commits; the other gets
// engine.ErrAlreadyCompletedToday.
func (s *HabitService) Complete(ctx context.Context, userID, habitID int) (CompletionResult, error) {
	now := s.clock.Now()
	var res CompletionResult
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		h, err := q.GetHabit(ctx, userID, habitID)
		if err != nil {
			return err
		}
		if !h.IsActive {
			return ErrHabitInactive
		}
		done, err := engine.CompleteHabit(h, now)
		if err != nil {
			return err
		}
		if err := q.SaveHabitStreak(ctx, done.Habit, h.Version); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return engine.ErrAlreadyCompletedToday
			}
			return err
		}
		if err := q.CreateCompletion(ctx, &done.Record); err != nil {
			return err
		}

		u, err := q.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user %d: %w", userID, err)
		}
		u, award := engine.AwardPoints(u, done.Habit)
		if err := q.UpdateUserProgress(ctx, u.ID, u.Points, u.Level); err != nil {
			return err
		}

		done.Habit.Version = h.Version + 1
		res = CompletionResult{Habit: done.Habit, Award: award}
		return nil
	})
	if err != nil {
		return CompletionResult{}, err
	}
	s.logger.Debug("habit completed",
		zap.Int("user_id", userID),
		zap.Int("habit_id", habitID),
		zap.Int("streak", res.Habit.CurrentStreak),
		zap.Int("points_earned", res.PointsEarned),
	)
	return res, nil
}

// Completions returns the habit's history, newest first.
func (s *HabitService) Completions(ctx context.Context, userID, habitID int) ([]models.HabitCompletion, error) {
	if _, err := s.store.GetHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	return s.store.ListCompletions(ctx, habitID)
}

func (s *HabitService) Stats(ctx context.Context, userID int) (engine.Stats, error) {
	now := s.clock.Now()
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return engine.Stats{}, err
	}
	n, err := s.store.CountCompletionsSince(ctx, userID, engine.WindowStart(now))
	if err != nil {
		return engine.Stats{}, err
	}
	return engine.ComputeStats(habits, n), nil
}
