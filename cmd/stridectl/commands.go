package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"stridestreak/internal/app"
)

type runContext struct {
	ctx    context.Context
	app    *app.App
	logger *zap.Logger
	out    io.Writer
}

// userIDs is the selected user, or every user when none was given.
func (rc *runContext) userIDs(only int) ([]int, error) {
	if only > 0 {
		return []int{only}, nil
	}
	return rc.app.Store.ListUserIDs(rc.ctx)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(rc *runContext) error {
	if err := rc.app.Migrate(); err != nil {
		return err
	}
	fmt.Fprintln(rc.out, "migrations applied")
	return nil
}

// RemindersCmd keeps going past a failing user and reports the total at the
// end, exiting non-zero if anything failed.
type RemindersCmd struct {
	UserID int `help:"Only this user. Defaults to all users." name:"user-id"`
}

func (c *RemindersCmd) Run(rc *runContext) error {
	ids, err := rc.userIDs(c.UserID)
	if err != nil {
		return err
	}
	sent, failed := 0, 0
	for _, id := range ids {
		report, err := rc.app.Reminders.SendReminders(rc.ctx, id)
		if err != nil {
			rc.logger.Warn("reminders failed", zap.Int("user_id", id), zap.Error(err))
			failed++
			continue
		}
		sent += report.RemindersSent
		failed += len(report.Failures)
	}
	fmt.Fprintf(rc.out, "users: %d, reminders sent: %d, failures: %d\n", len(ids), sent, failed)
	if failed > 0 {
		return fmt.Errorf("%d reminder(s) failed", failed)
	}
	return nil
}

type AchievementsCmd struct {
	UserID int `help:"Only this user. Defaults to all users." name:"user-id"`
}

func (c *AchievementsCmd) Run(rc *runContext) error {
	ids, err := rc.userIDs(c.UserID)
	if err != nil {
		return err
	}
	found, sent, failed := 0, 0, 0
	for _, id := range ids {
		report, err := rc.app.Achievements.CheckAchievements(rc.ctx, id)
		if err != nil {
			rc.logger.Warn("achievement check failed", zap.Int("user_id", id), zap.Error(err))
			failed++
			continue
		}
		found += report.AchievementsFound
		sent += report.NotificationsSent
		failed += len(report.Failures)
	}
	fmt.Fprintf(rc.out, "users: %d, achievements found: %d, notifications sent: %d, failures: %d\n", len(ids), found, sent, failed)
	if failed > 0 {
		return fmt.Errorf("%d achievement check(s) failed", failed)
	}
	return nil
}
