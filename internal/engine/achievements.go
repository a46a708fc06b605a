package engine

import (
	"fmt"

	"stridestreak/internal/models"
)

// AchievementKind names a milestone.
type AchievementKind string

const (
	AchievementLevelUp     AchievementKind = "level_up"
	AchievementWeekStreak  AchievementKind = "week_streak"
	AchievementMonthMaster AchievementKind = "month_master"
)

const (
	WeekStreakDays  = 7
	MonthStreakDays = 30
)

// Achievement is one milestone reached, ready to be sent as a notification.
type Achievement struct {
	Kind    AchievementKind `json:"kind"`
	HabitID int             `json:"habit_id,omitempty"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
}

// Detection is the result of DetectAchievements.
type Detection struct {
	Achievements []Achievement
	// User carries the bumped level when LeveledUp is set.
	User      models.User
	LeveledUp bool
}

// DetectAchievements inspects the user's level and every habit's current
// streak. Streak milestones compare for equality so each crossing fires once.
func DetectAchievements(u models.User, habits []models.Habit) Detection {
	d := Detection{User: u}

	if lvl := LevelFor(u.Points); lvl > u.Level {
		d.User.Level = lvl
		d.LeveledUp = true
		d.Achievements = append(d.Achievements, Achievement{
			Kind:    AchievementLevelUp,
			Title:   "Level Up! 🎉",
			Message: fmt.Sprintf("Congratulations! You've reached level %d!", lvl),
		})
	}

	for _, h := range habits {
		switch h.CurrentStreak {
		case WeekStreakDays:
			d.Achievements = append(d.Achievements, Achievement{
				Kind:    AchievementWeekStreak,
				HabitID: h.ID,
				Title:   "Week Streak! 🌟",
				Message: fmt.Sprintf("You've maintained %s for 7 days straight!", h.Title),
			})
		case MonthStreakDays:
			d.Achievements = append(d.Achievements, Achievement{
				Kind:    AchievementMonthMaster,
				HabitID: h.ID,
				Title:   "Month Master! 🏆",
				Message: fmt.Sprintf("Incredible! You've kept up %s for 30 days!", h.Title),
			})
		}
	}
	return d
}
