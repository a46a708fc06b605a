package services

import (
	"context"

	"go.uber.org/zap"

	"stridestreak/internal/clock"
	"stridestreak/internal/engine"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

// DispatchFailure identifies one notification that could not be delivered
// during a batch.
type DispatchFailure struct {
	HabitID     int                    `json:"habit_id,omitempty"`
	Achievement engine.AchievementKind `json:"achievement,omitempty"`
	Error       string                 `json:"error"`
}

type ReminderReport struct {
	RemindersSent int               `json:"reminders_sent"`
	Failures      []DispatchFailure `json:"failures"`
}

type ReminderService struct {
	store    *store.Store
	notifier *Notifier
	clock    clock.Clock
	logger   *zap.Logger
}

func NewReminderService(s *store.Store, n *Notifier, c clock.Clock, logger *zap.Logger) *ReminderService {
	return &ReminderService{store: s, notifier: n, clock: c, logger: logger}
}

// SendReminders notifies userID about every active habit that is due today.
// A failed dispatch is reported and the batch carries on.
func (s *ReminderService) SendReminders(ctx context.Context, userID int) (ReminderReport, error) {
	report := ReminderReport{Failures: []DispatchFailure{}}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return report, err
	}
	habits, err := s.store.ListActiveHabits(ctx, userID)
	if err != nil {
		return report, err
	}

	today := s.clock.Now()
	for _, h := range habits {
		if !engine.DueForReminder(h, today) {
			continue
		}
		title, message := engine.ReminderText(h)
		if _, err := s.notifier.Notify(ctx, userID, title, message, models.ChannelBoth); err != nil {
			s.logger.Warn("reminder dispatch failed",
				zap.Int("user_id", userID),
				zap.Int("habit_id", h.ID),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, DispatchFailure{HabitID: h.ID, Error: err.Error()})
			continue
		}
		report.RemindersSent++
	}
	return report, nil
}
