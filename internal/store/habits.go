package store

import (
	"context"
	"fmt"
	"time"

	"stridestreak/internal/models"
)

const habitColumns = `id, user_id, title, description, frequency, reminder_time, created_at, current_streak, longest_streak, last_completed, is_active, version`

// CreateHabit inserts h with a zero streak and sets its ID.
func (q *Queries) CreateHabit(ctx context.Context, h *models.Habit) error {
	id, err := q.insert(ctx, `INSERT INTO habits (user_id, title, description, frequency, reminder_time, created_at, current_streak, longest_streak, is_active, version)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, 0) RETURNING id`,
		h.UserID, h.Title, h.Description, string(h.Frequency), nullString(h.ReminderTime), utc(h.CreatedAt), h.IsActive)
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	h.ID = id
	h.CurrentStreak, h.LongestStreak, h.Version = 0, 0, 0
	return nil
}

// GetHabit loads a habit owned by userID. Other users' habits are not found.
func (q *Queries) GetHabit(ctx context.Context, userID, id int) (models.Habit, error) {
	var h models.Habit
	err := q.get(ctx, &h, `SELECT `+habitColumns+` FROM habits WHERE id=? AND user_id=?`, id, userID)
	return h, err
}

func (q *Queries) ListHabits(ctx context.Context, userID int) ([]models.Habit, error) {
	habits := []models.Habit{}
	if err := q.selectAll(ctx, &habits, `SELECT `+habitColumns+` FROM habits WHERE user_id=? ORDER BY created_at, id`, userID); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

func (q *Queries) ListActiveHabits(ctx context.Context, userID int) ([]models.Habit, error) {
	habits := []models.Habit{}
	if err := q.selectAll(ctx, &habits, `SELECT `+habitColumns+` FROM habits WHERE user_id=? AND is_active=? ORDER BY created_at, id`, userID, true); err != nil {
		return nil, fmt.Errorf("list active habits: %w", err)
	}
	return habits, nil
}

// UpdateHabitDetails writes the user-editable fields. Streak fields are left
// to SaveHabitStreak.
func (q *Queries) UpdateHabitDetails(ctx context.Context, h models.Habit) error {
	n, err := q.exec(ctx, `UPDATE habits SET title=?, description=?, frequency=?, reminder_time=?, is_active=? WHERE id=? AND user_id=?`,
		h.Title, h.Description, string(h.Frequency), nullString(h.ReminderTime), h.IsActive, h.ID, h.UserID)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveHabitStreak is a compare-and-swap on the version column: it writes the
// streak fields only if nobody completed the habit since it was read at
// expectedVersion.
func (q *Queries) SaveHabitStreak(ctx context.Context, h models.Habit, expectedVersion int) error {
	n, err := q.exec(ctx, `UPDATE habits SET current_streak=?, longest_streak=?, last_completed=?, version=version+1 WHERE id=? AND version=?`,
		h.CurrentStreak, h.LongestStreak, nullTime(h.LastCompleted), h.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("save habit streak: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteHabit removes the habit and its completions.
func (q *Queries) DeleteHabit(ctx context.Context, userID, id int) error {
	if _, err := q.exec(ctx, `DELETE FROM habit_completions WHERE habit_id IN (SELECT id FROM habits WHERE id=? AND user_id=?)`, id, userID); err != nil {
		return fmt.Errorf("delete habit completions: %w", err)
	}
	n, err := q.exec(ctx, `DELETE FROM habits WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) CreateCompletion(ctx context.Context, c *models.HabitCompletion) error {
	id, err := q.insert(ctx, `INSERT INTO habit_completions (habit_id, completed_at) VALUES (?, ?) RETURNING id`,
		c.HabitID, utc(c.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	c.ID = id
	return nil
}

// ListCompletions returns a habit's history, newest first.
func (q *Queries) ListCompletions(ctx context.Context, habitID int) ([]models.HabitCompletion, error) {
	out := []models.HabitCompletion{}
	if err := q.selectAll(ctx, &out, `SELECT id, habit_id, completed_at FROM habit_completions WHERE habit_id=? ORDER BY completed_at DESC, id DESC`, habitID); err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return out, nil
}

// CountCompletionsSince counts completions across all of a user's habits at
// or after since.
func (q *Queries) CountCompletionsSince(ctx context.Context, userID int, since time.Time) (int, error) {
	n, err := q.count(ctx, `SELECT COUNT(*) FROM habit_completions c JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id=? AND c.completed_at >= ?`, userID, utc(since))
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}
