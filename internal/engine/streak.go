// Package engine holds the habit state transitions: streak updates, points
// and levels, achievement detection, reminder eligibility and stats. Every
// function takes plain records and an explicit instant and returns new
// records; persistence is the caller's job.
package engine

import (
	"errors"
	"time"

	"stridestreak/internal/models"
)

// ErrAlreadyCompletedToday is a conflict, not a failure: the habit already
// has a completion on the same UTC calendar day.
var ErrAlreadyCompletedToday = errors.New("habit already completed today")

// Completion is the outcome of an accepted completion: the habit with its
// streak fields advanced and the record to append.
type Completion struct {
	Habit  models.Habit
	Record models.HabitCompletion
	// Continued is true when the streak grew from yesterday's completion
	// rather than restarting at 1.
	Continued bool
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.UTC().Date()
	return civilDate{y, m, d}
}

// SameDay compares two instants by their UTC calendar date.
func SameDay(a, b time.Time) bool {
	return dateOf(a) == dateOf(b)
}

// CompletedOn reports whether the habit's last completion falls on day's UTC date.
func CompletedOn(h models.Habit, day time.Time) bool {
	return h.LastCompleted != nil && SameDay(*h.LastCompleted, day)
}

// CompleteHabit applies one completion at now. The input habit is not
// modified. Activity is checked by the caller.
func CompleteHabit(h models.Habit, now time.Time) (Completion, error) {
	now = now.UTC()
	if CompletedOn(h, now) {
		return Completion{}, ErrAlreadyCompletedToday
	}

	next := h
	continued := h.LastCompleted != nil && SameDay(*h.LastCompleted, now.AddDate(0, 0, -1))
	if continued {
		next.CurrentStreak = h.CurrentStreak + 1
	} else {
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	completedAt := now
	next.LastCompleted = &completedAt

	return Completion{
		Habit:     next,
		Record:    models.HabitCompletion{HabitID: h.ID, CompletedAt: now},
		Continued: continued,
	}, nil
}
