package engine

import (
	"fmt"
	"time"

	"stridestreak/internal/models"
)

// DueForReminder decides whether h needs a reminder on today's UTC date.
// Weekly habits are anchored on Monday, monthly ones on the 1st.
func DueForReminder(h models.Habit, today time.Time) bool {
	today = today.UTC()
	if CompletedOn(h, today) {
		return false
	}
	switch h.Frequency {
	case models.FrequencyDaily:
		return true
	case models.FrequencyWeekly:
		return today.Weekday() == time.Monday
	case models.FrequencyMonthly:
		return today.Day() == 1
	}
	return false
}

func ReminderText(h models.Habit) (title, message string) {
	return fmt.Sprintf("Reminder: %s", h.Title),
		fmt.Sprintf("Don't forget to complete your habit: %s", h.Title)
}
