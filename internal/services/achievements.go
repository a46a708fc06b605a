package services

import (
	"context"

	"go.uber.org/zap"

	"stridestreak/internal/engine"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

type AchievementReport struct {
	AchievementsFound int                  `json:"achievements_found"`
	NotificationsSent int                  `json:"notifications_sent"`
	Achievements      []engine.Achievement `json:"achievements"`
	Failures          []DispatchFailure    `json:"failures"`
}

type AchievementService struct {
	store    *store.Store
	notifier *Notifier
	logger   *zap.Logger
}

func NewAchievementService(s *store.Store, n *Notifier, logger *zap.Logger) *AchievementService {
	return &AchievementService{store: s, notifier: n, logger: logger}
}

// CheckAchievements persists a pending level-up, then sends one notification
// per achievement found. Dispatch failures lower NotificationsSent but do not
// fail the call.
func (s *AchievementService) CheckAchievements(ctx context.Context, userID int) (AchievementReport, error) {
	report := AchievementReport{Achievements: []engine.Achievement{}, Failures: []DispatchFailure{}}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return report, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return report, err
	}

	det := engine.DetectAchievements(u, habits)
	if det.LeveledUp {
		if err := s.store.RaiseUserLevel(ctx, userID, det.User.Level); err != nil {
			return report, err
		}
	}

	report.AchievementsFound = len(det.Achievements)
	report.Achievements = append(report.Achievements, det.Achievements...)
	for _, a := range det.Achievements {
		if _, err := s.notifier.Notify(ctx, userID, a.Title, a.Message, models.ChannelBoth); err != nil {
			s.logger.Warn("achievement dispatch failed",
				zap.Int("user_id", userID),
				zap.String("achievement", string(a.Kind)),
				zap.Int("habit_id", a.HabitID),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, DispatchFailure{HabitID: a.HabitID, Achievement: a.Kind, Error: err.Error()})
			continue
		}
		report.NotificationsSent++
	}
	return report, nil
}
