package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"stridestreak/internal/services"
)

type HabitsHandler struct {
	habits *services.HabitService
	logger *zap.Logger
}

func NewHabitsHandler(habits *services.HabitService, logger *zap.Logger) *HabitsHandler {
	return &HabitsHandler{habits: habits, logger: logger}
}

type createHabitRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Frequency    string `json:"frequency"`
	ReminderTime string `json:"reminder_time"`
}

// reminder_time is kept raw so that an explicit null can clear it.
type updateHabitRequest struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Frequency    *string         `json:"frequency"`
	ReminderTime json.RawMessage `json:"reminder_time"`
	IsActive     *bool           `json:"is_active"`
}

func (req updateHabitRequest) patch() (services.HabitPatch, bool) {
	p := services.HabitPatch{
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		IsActive:    req.IsActive,
	}
	if len(req.ReminderTime) == 0 {
		return p, true
	}
	p.SetReminder = true
	if bytes.Equal(req.ReminderTime, []byte("null")) {
		return p, true
	}
	if err := json.Unmarshal(req.ReminderTime, &p.ReminderTime); err != nil {
		return p, false
	}
	return p, true
}

// List returns the caller's habits in creation order.
// @Summary List habits
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Router /habits [get]
func (h *HabitsHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.habits.List(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habits": habits})
}

func (h *HabitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" || req.Frequency == "" {
		writeError(w, http.StatusBadRequest, "title and frequency are required")
		return
	}
	habit, err := h.habits.Create(r.Context(), userID(r), services.HabitInput{
		Title:        req.Title,
		Description:  req.Description,
		Frequency:    req.Frequency,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Habit created successfully", "habit": habit})
}

func (h *HabitsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	habit, err := h.habits.Get(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	var req updateHabitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	patch, ok := req.patch()
	if !ok {
		writeError(w, http.StatusBadRequest, "reminder_time must be a string or null")
		return
	}
	habit, err := h.habits.Update(r.Context(), userID(r), id, patch)
	if err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Habit updated successfully", "habit": habit})
}

func (h *HabitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	if err := h.habits.Delete(r.Context(), userID(r), id); err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted successfully"})
}

// Complete marks the habit done for today and awards points.
// @Summary Complete habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Habit ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /habits/{id}/complete [post]
func (h *HabitsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	res, err := h.habits.Complete(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Habit completed successfully",
		"habit":         res.Habit,
		"points_earned": res.PointsEarned,
		"total_points":  res.TotalPoints,
		"level":         res.Level,
	})
}

func (h *HabitsHandler) Completions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	history, err := h.habits.Completions(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completions": history})
}

func (h *HabitsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.habits.Stats(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
