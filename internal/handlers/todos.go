package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stridestreak/internal/clock"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

// TodosHandler answers with a {success, ...} envelope, errors included.
type TodosHandler struct {
	store  *store.Store
	clock  clock.Clock
	logger *zap.Logger
}

func NewTodosHandler(s *store.Store, c clock.Clock, logger *zap.Logger) *TodosHandler {
	return &TodosHandler{store: s, clock: c, logger: logger}
}

type todoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func todoFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func (h *TodosHandler) storeFail(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		todoFail(w, http.StatusNotFound, "Todo not found")
		return
	}
	h.logger.Error(op, zap.Error(err))
	todoFail(w, http.StatusInternalServerError, "Error "+op)
}

func (h *TodosHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.store.ListTodos(r.Context(), userID(r))
	if err != nil {
		h.storeFail(w, err, "fetching todos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "todos": todos})
}

func (h *TodosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if err := decode(r, &req); err != nil {
		todoFail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		todoFail(w, http.StatusBadRequest, "Todo text is required")
		return
	}
	now := h.clock.Now()
	todo := models.Todo{
		UserID:    userID(r),
		Text:      strings.TrimSpace(*req.Text),
		Completed: req.Completed != nil && *req.Completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateTodo(r.Context(), &todo); err != nil {
		h.storeFail(w, err, "creating todo")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Todo created successfully", "todo": todo})
}

func (h *TodosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		todoFail(w, http.StatusBadRequest, "invalid todo id")
		return
	}
	var req todoRequest
	if err := decode(r, &req); err != nil {
		todoFail(w, http.StatusBadRequest, "invalid body")
		return
	}
	todo, err := h.store.GetTodo(r.Context(), userID(r), id)
	if err != nil {
		h.storeFail(w, err, "updating todo")
		return
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			todoFail(w, http.StatusBadRequest, "Todo text cannot be empty")
			return
		}
		todo.Text = text
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedAt = h.clock.Now()
	if err := h.store.UpdateTodo(r.Context(), todo); err != nil {
		h.storeFail(w, err, "updating todo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Todo updated successfully", "todo": todo})
}

func (h *TodosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		todoFail(w, http.StatusBadRequest, "invalid todo id")
		return
	}
	if err := h.store.DeleteTodo(r.Context(), userID(r), id); err != nil {
		h.storeFail(w, err, "deleting todo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Todo deleted successfully"})
}

func (h *TodosHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.TodoStats(r.Context(), userID(r))
	if err != nil {
		h.storeFail(w, err, "fetching todo stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}
