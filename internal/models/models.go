package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency accepts only the three known cadences.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.TrimSpace(s)); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f, nil
	}
	return "", fmt.Errorf("invalid frequency %q", s)
}

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelBoth  Channel = "both"
)

// Includes reports whether c delivers over the single channel other.
func (c Channel) Includes(other Channel) bool {
	return c == other || c == ChannelBoth
}

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

// NotificationPreferences is stored as a JSON document on the users row.
type NotificationPreferences struct {
	Email        bool   `json:"email"`
	Push         bool   `json:"push"`
	ReminderTime string `json:"reminder_time,omitempty"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, Push: true}
}

// Enabled reports the flag for a single channel name.
func (p NotificationPreferences) Enabled(c Channel) bool {
	switch c {
	case ChannelEmail:
		return p.Email
	case ChannelPush:
		return p.Push
	}
	return false
}

func (p NotificationPreferences) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *NotificationPreferences) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = DefaultNotificationPreferences()
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported notification_preferences type %T", src)
	}
	prefs := DefaultNotificationPreferences()
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return err
	}
	*p = prefs
	return nil
}

type User struct {
	ID                      int                     `db:"id" json:"id"`
	Email                   string                  `db:"email" json:"email"`         // Encrypted in DB
	EmailBlindIndex         string                  `db:"email_blind_index" json:"-"` // HMAC hash for lookup
	Username                string                  `db:"username" json:"username"`
	PasswordHash            string                  `db:"password_hash" json:"-"`
	CreatedAt               time.Time               `db:"created_at" json:"created_at"`
	LastLogin               *time.Time              `db:"last_login" json:"last_login"`
	Points                  int                     `db:"points" json:"points"`
	Level                   int                     `db:"level" json:"level"`
	NotificationPreferences NotificationPreferences `db:"notification_preferences" json:"notification_preferences"`
}

type Habit struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Frequency     Frequency  `db:"frequency" json:"frequency"`
	ReminderTime  *string    `db:"reminder_time" json:"reminder_time"` // HH:MM:SS
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	CurrentStreak int        `db:"current_streak" json:"current_streak"`
	LongestStreak int        `db:"longest_streak" json:"longest_streak"`
	LastCompleted *time.Time `db:"last_completed" json:"last_completed"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	Version       int        `db:"version" json:"-"` // bumped by every completion
}

type HabitCompletion struct {
	ID          int       `db:"id" json:"id"`
	HabitID     int       `db:"habit_id" json:"habit_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

type Notification struct {
	ID        int                `db:"id" json:"id"`
	UserID    int                `db:"user_id" json:"user_id"`
	Title     string             `db:"title" json:"title"`
	Message   string             `db:"message" json:"message"`
	Type      Channel            `db:"type" json:"type"`
	Status    NotificationStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	SentAt    *time.Time         `db:"sent_at" json:"sent_at"`
	ReadAt    *time.Time         `db:"read_at" json:"read_at"`
}

type Todo struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
