package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stridestreak/internal/clock"
	"stridestreak/internal/services"
	"stridestreak/internal/store"
)

type NotificationsHandler struct {
	store        *store.Store
	reminders    *services.ReminderService
	achievements *services.AchievementService
	clock        clock.Clock
	logger       *zap.Logger
}

func NewNotificationsHandler(s *store.Store, reminders *services.ReminderService, achievements *services.AchievementService, c clock.Clock, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{store: s, reminders: reminders, achievements: achievements, clock: c, logger: logger}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.ListNotifications(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notes})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.store.MarkNotificationRead(r.Context(), userID(r), id, h.clock.Now()); err != nil {
		writeServiceError(w, h.logger, err, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.MarkAllNotificationsRead(r.Context(), userID(r), h.clock.Now())
	if err != nil {
		writeServiceError(w, h.logger, err, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All notifications marked as read", "updated": n})
}

// SendReminders dispatches a reminder for every habit of the caller that is
// due today.
// @Summary Send reminders
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Router /notifications/reminders [post]
func (h *NotificationsHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.reminders.SendReminders(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Reminders sent successfully",
		"reminders_sent": report.RemindersSent,
		"failures":       report.Failures,
	})
}

func (h *NotificationsHandler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	report, err := h.achievements.CheckAchievements(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "Achievements checked successfully",
		"achievements_found": report.AchievementsFound,
		"notifications_sent": report.NotificationsSent,
		"achievements":       report.Achievements,
		"failures":           report.Failures,
	})
}
