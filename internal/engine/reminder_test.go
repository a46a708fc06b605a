package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stridestreak/internal/models"
)

var (
	monday    = time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	wednesday = time.Date(2026, 10, 21, 7, 0, 0, 0, time.UTC)
	firstSun  = time.Date(2026, 11, 1, 7, 0, 0, 0, time.UTC)
)

func habitWith(f models.Frequency) models.Habit {
	return models.Habit{ID: 1, Title: "Meditate", Frequency: f, IsActive: true}
}

func TestDueForReminder(t *testing.T) {
	tests := []struct {
		name  string
		freq  models.Frequency
		today time.Time
		want  bool
	}{
		{"daily on wednesday", models.FrequencyDaily, wednesday, true},
		{"weekly on monday", models.FrequencyWeekly, monday, true},
		{"weekly on wednesday", models.FrequencyWeekly, wednesday, false},
		{"weekly on the 1st that is a sunday", models.FrequencyWeekly, firstSun, false},
		{"monthly on the 1st", models.FrequencyMonthly, firstSun, true},
		{"monthly on monday the 19th", models.FrequencyMonthly, monday, false},
		{"unknown frequency", models.Frequency("hourly"), monday, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueForReminder(habitWith(tt.freq), tt.today))
		})
	}
}

func TestDueForReminder_CompletedTodayIsNotDue(t *testing.T) {
	for _, f := range []models.Frequency{models.FrequencyDaily, models.FrequencyWeekly} {
		h := habitWith(f)
		done := monday.Add(-5 * time.Hour)
		h.LastCompleted = &done
		assert.False(t, DueForReminder(h, monday), string(f))
	}

	h := habitWith(models.FrequencyDaily)
	yesterday := monday.AddDate(0, 0, -1)
	h.LastCompleted = &yesterday
	assert.True(t, DueForReminder(h, monday))
}

func TestReminderText(t *testing.T) {
	title, msg := ReminderText(habitWith(models.FrequencyDaily))
	assert.Equal(t, "Reminder: Meditate", title)
	assert.Equal(t, "Don't forget to complete your habit: Meditate", msg)
}
