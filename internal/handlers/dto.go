package handlers

import (
	"time"

	"stridestreak/internal/models"
)

// UserDTO is the public shape of an account. Timestamps are RFC 3339 strings.
type UserDTO struct {
	ID                      int                            `json:"id"`
	Email                   string                         `json:"email"`
	Username                string                         `json:"username"`
	Points                  int                            `json:"points"`
	Level                   int                            `json:"level"`
	CreatedAt               string                         `json:"created_at"`
	LastLogin               *string                        `json:"last_login"`
	NotificationPreferences models.NotificationPreferences `json:"notification_preferences"`
}

func toDateTimeStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// ToUserDTO expects u with its email already decrypted.
func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:                      u.ID,
		Email:                   u.Email,
		Username:                u.Username,
		Points:                  u.Points,
		Level:                   u.Level,
		CreatedAt:               u.CreatedAt.UTC().Format(time.RFC3339),
		LastLogin:               toDateTimeStringPtr(u.LastLogin),
		NotificationPreferences: u.NotificationPreferences,
	}
}
