package engine

import "stridestreak/internal/models"

const (
	PointsPerStreakDay = 10
	MaxPointsPerAward  = 100
	PointsPerLevel     = 1000
)

// Award is the outcome of crediting one completion.
type Award struct {
	PointsEarned int `json:"points_earned"`
	TotalPoints  int `json:"total_points"`
	Level        int `json:"level"`
}

// PointsFor scales linearly with the streak and is capped per completion.
func PointsFor(streak int) int {
	if streak < 0 {
		return 0
	}
	return min(streak*PointsPerStreakDay, MaxPointsPerAward)
}

// LevelFor is floor(points / 1000) + 1. Points are never negative, so integer
// division is floor division.
func LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// AwardPoints credits the user for the habit's current streak. The level only
// ever moves up.
func AwardPoints(u models.User, h models.Habit) (models.User, Award) {
	earned := PointsFor(h.CurrentStreak)
	u.Points += earned
	if lvl := LevelFor(u.Points); lvl > u.Level {
		u.Level = lvl
	}
	return u, Award{PointsEarned: earned, TotalPoints: u.Points, Level: u.Level}
}
