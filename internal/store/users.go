package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stridestreak/internal/models"
)

const userColumns = `id, email, email_blind_index, username, password_hash, created_at, last_login, points, level, notification_preferences`

func prefsJSON(p models.NotificationPreferences) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode notification preferences: %w", err)
	}
	return string(b), nil
}

// CreateUser inserts u and sets its ID. Points and level start at 0 and 1.
func (q *Queries) CreateUser(ctx context.Context, u *models.User) error {
	prefs, err := prefsJSON(u.NotificationPreferences)
	if err != nil {
		return err
	}
	if u.Level < 1 {
		u.Level = 1
	}
	id, err := q.insert(ctx, `INSERT INTO users (email, email_blind_index, username, password_hash, created_at, points, level, notification_preferences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		u.Email, u.EmailBlindIndex, u.Username, u.PasswordHash, utc(u.CreatedAt), u.Points, u.Level, prefs)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := q.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	return u, err
}

func (q *Queries) GetUserByBlindIndex(ctx context.Context, blindIndex string) (models.User, error) {
	var u models.User
	err := q.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email_blind_index=?`, blindIndex)
	return u, err
}

// UsernameTaken reports whether another user (not exceptID) holds username.
func (q *Queries) UsernameTaken(ctx context.Context, username string, exceptID int) (bool, error) {
	n, err := q.count(ctx, `SELECT COUNT(*) FROM users WHERE username=? AND id<>?`, username, exceptID)
	return n > 0, err
}

// EmailTaken reports whether another user (not exceptID) holds the blind index.
func (q *Queries) EmailTaken(ctx context.Context, blindIndex string, exceptID int) (bool, error) {
	n, err := q.count(ctx, `SELECT COUNT(*) FROM users WHERE email_blind_index=? AND id<>?`, blindIndex, exceptID)
	return n > 0, err
}

// UpdateUserProfile writes the account fields a user may edit.
func (q *Queries) UpdateUserProfile(ctx context.Context, u models.User) error {
	prefs, err := prefsJSON(u.NotificationPreferences)
	if err != nil {
		return err
	}
	n, err := q.exec(ctx, `UPDATE users SET email=?, email_blind_index=?, username=?, password_hash=?, notification_preferences=? WHERE id=?`,
		u.Email, u.EmailBlindIndex, u.Username, u.PasswordHash, prefs, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserProgress stores points and level after an award.
func (q *Queries) UpdateUserProgress(ctx context.Context, id, points, level int) error {
	n, err := q.exec(ctx, `UPDATE users SET points=?, level=? WHERE id=?`, points, level, id)
	if err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RaiseUserLevel only ever moves the level up.
func (q *Queries) RaiseUserLevel(ctx context.Context, id, level int) error {
	if _, err := q.exec(ctx, `UPDATE users SET level=? WHERE id=? AND level<?`, level, id, level); err != nil {
		return fmt.Errorf("raise user level: %w", err)
	}
	return nil
}

func (q *Queries) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	if _, err := q.exec(ctx, `UPDATE users SET last_login=? WHERE id=?`, utc(at), id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// DeleteUser removes the user and everything they own. Run it inside WithTx.
func (q *Queries) DeleteUser(ctx context.Context, id int) error {
	stmts := []string{
		`DELETE FROM habit_completions WHERE habit_id IN (SELECT id FROM habits WHERE user_id=?)`,
		`DELETE FROM habits WHERE user_id=?`,
		`DELETE FROM notifications WHERE user_id=?`,
		`DELETE FROM todos WHERE user_id=?`,
	}
	for _, s := range stmts {
		if _, err := q.exec(ctx, s, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}
	n, err := q.exec(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) ListUserIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := q.selectAll(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}
