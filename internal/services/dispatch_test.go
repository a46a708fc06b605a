package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stridestreak/internal/engine"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

func TestNotifier_SendsEmailToDecryptedAddress(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")

	note, err := e.notifier.Notify(ctx, u.ID, "Hi", "Body", models.ChannelBoth)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, note.Status)
	require.NotNil(t, note.SentAt)

	sent := e.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, sentMail{To: "ada@example.com", Subject: "Hi", Body: "Body"}, sent[0])
}

func TestNotifier_PushOnlyAndOptOutSkipEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")

	_, err := e.notifier.Notify(ctx, u.ID, "Push", "m", models.ChannelPush)
	require.NoError(t, err)

	prefs := models.NotificationPreferences{Email: false, Push: true}
	_, err = e.accounts.UpdateProfile(ctx, u.ID, ProfilePatch{NotificationPreferences: &prefs})
	require.NoError(t, err)
	note, err := e.notifier.Notify(ctx, u.ID, "Both", "m", models.ChannelBoth)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, note.Status)

	assert.Empty(t, e.mailer.Sent())
}

func TestNotifier_MailFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	e.mailer.failOn = "Hi"

	note, err := e.notifier.Notify(ctx, u.ID, "Hi", "m", models.ChannelEmail)
	assert.Error(t, err)

	stored, err := e.store.GetNotification(ctx, u.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Nil(t, stored.SentAt)
}

func TestNotifier_UnknownUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.notifier.Notify(context.Background(), 42, "Hi", "m", models.ChannelPush)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReminders_OnlyDueHabits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")

	daily := e.habit(t, u.ID, "Run", "daily")
	weekly := e.habit(t, u.ID, "Review", "weekly")
	e.habit(t, u.ID, "Budget", "monthly")
	done := e.habit(t, u.ID, "Read", "daily")
	e.setStreak(t, u.ID, done.ID, 1, monday)
	paused := e.habit(t, u.ID, "Swim", "daily")
	off := false
	_, err := e.habits.Update(ctx, u.ID, paused.ID, HabitPatch{IsActive: &off})
	require.NoError(t, err)

	report, err := e.reminders.SendReminders(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RemindersSent)
	assert.Empty(t, report.Failures)

	notes, err := e.store.ListNotifications(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	titles := []string{notes[0].Title, notes[1].Title}
	assert.ElementsMatch(t, []string{"Reminder: " + daily.Title, "Reminder: " + weekly.Title}, titles)
	for _, n := range notes {
		assert.Equal(t, models.ChannelBoth, n.Type)
	}
}

func TestReminders_WednesdaySkipsWeekly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	e.habit(t, u.ID, "Review", "weekly")
	e.clock.AddDays(2)

	report, err := e.reminders.SendReminders(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, report.RemindersSent)
}

func TestReminders_PartialFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	e.habit(t, u.ID, "Run", "daily")
	bad := e.habit(t, u.ID, "Read", "daily")
	e.mailer.failOn = "Read"

	report, err := e.reminders.SendReminders(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RemindersSent)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad.ID, report.Failures[0].HabitID)
	assert.Contains(t, report.Failures[0].Error, "relay refused")
}

func TestReminders_UnknownUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.reminders.SendReminders(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAchievements_LevelUpAndStreaks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	week := e.habit(t, u.ID, "Run", "daily")
	month := e.habit(t, u.ID, "Read", "daily")
	over := e.habit(t, u.ID, "Swim", "daily")
	e.setStreak(t, u.ID, week.ID, 7, monday)
	e.setStreak(t, u.ID, month.ID, 30, monday)
	e.setStreak(t, u.ID, over.ID, 8, monday)
	require.NoError(t, e.store.UpdateUserProgress(ctx, u.ID, 2500, 1))

	report, err := e.achievements.CheckAchievements(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.AchievementsFound)
	assert.Equal(t, 3, report.NotificationsSent)
	assert.Empty(t, report.Failures)

	kinds := map[engine.AchievementKind]int{}
	for _, a := range report.Achievements {
		kinds[a.Kind]++
	}
	assert.Equal(t, map[engine.AchievementKind]int{
		engine.AchievementLevelUp:     1,
		engine.AchievementWeekStreak:  1,
		engine.AchievementMonthMaster: 1,
	}, kinds)

	user, err := e.accounts.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, user.Level)

	// the level-up is persisted, so it does not fire twice
	report, err = e.achievements.CheckAchievements(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.AchievementsFound)
}

func TestAchievements_PartialFailureIsReported(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "ada")
	week := e.habit(t, u.ID, "Run", "daily")
	e.setStreak(t, u.ID, week.ID, 7, monday)
	require.NoError(t, e.store.UpdateUserProgress(ctx, u.ID, 1000, 1))
	e.mailer.failOn = "Week Streak"

	report, err := e.achievements.CheckAchievements(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.AchievementsFound)
	assert.Equal(t, 1, report.NotificationsSent)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, engine.AchievementWeekStreak, report.Failures[0].Achievement)
	assert.Equal(t, week.ID, report.Failures[0].HabitID)
}
