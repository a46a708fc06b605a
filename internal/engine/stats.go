package engine

import (
	"math"
	"time"

	"stridestreak/internal/models"
)

const StatsWindow = 30 * 24 * time.Hour

// Stats is the per-user summary served by the habit stats endpoint.
type Stats struct {
	TotalHabits       int     `json:"total_habits"`
	ActiveHabits      int     `json:"active_habits"`
	TotalStreaks      int     `json:"total_streaks"`
	LongestStreak     int     `json:"longest_streak"`
	CompletionRate30d float64 `json:"completion_rate_30d"`
}

// WindowStart is the inclusive lower bound for completions counted by ComputeStats.
func WindowStart(now time.Time) time.Time {
	return now.UTC().Add(-StatsWindow)
}

// MaxCompletionsInWindow is the most completions a habit of the given
// frequency can be expected to record in the trailing window.
func MaxCompletionsInWindow(f models.Frequency) int {
	switch f {
	case models.FrequencyDaily:
		return 30
	case models.FrequencyWeekly:
		return 4
	default:
		return 1
	}
}

// ComputeStats summarizes habits. completionsInWindow is the number of
// completion records since WindowStart across all of the user's habits.
func ComputeStats(habits []models.Habit, completionsInWindow int) Stats {
	s := Stats{TotalHabits: len(habits)}
	possible := 0
	for _, h := range habits {
		s.TotalStreaks += h.CurrentStreak
		if h.LongestStreak > s.LongestStreak {
			s.LongestStreak = h.LongestStreak
		}
		if h.IsActive {
			s.ActiveHabits++
			possible += MaxCompletionsInWindow(h.Frequency)
		}
	}
	if possible > 0 {
		rate := float64(completionsInWindow) / float64(possible) * 100
		s.CompletionRate30d = math.Round(rate*100) / 100
	}
	return s
}
