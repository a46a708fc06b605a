package store

import (
	"context"
	"fmt"

	"stridestreak/internal/models"
)

const todoColumns = `id, user_id, text, completed, created_at, updated_at`

type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func (q *Queries) CreateTodo(ctx context.Context, t *models.Todo) error {
	id, err := q.insert(ctx, `INSERT INTO todos (user_id, text, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		t.UserID, t.Text, t.Completed, utc(t.CreatedAt), utc(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	t.ID = id
	return nil
}

func (q *Queries) GetTodo(ctx context.Context, userID, id int) (models.Todo, error) {
	var t models.Todo
	err := q.get(ctx, &t, `SELECT `+todoColumns+` FROM todos WHERE id=? AND user_id=?`, id, userID)
	return t, err
}

// ListTodos returns the user's todos, newest first.
func (q *Queries) ListTodos(ctx context.Context, userID int) ([]models.Todo, error) {
	out := []models.Todo{}
	if err := q.selectAll(ctx, &out, `SELECT `+todoColumns+` FROM todos WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

func (q *Queries) UpdateTodo(ctx context.Context, t models.Todo) error {
	n, err := q.exec(ctx, `UPDATE todos SET text=?, completed=?, updated_at=? WHERE id=? AND user_id=?`,
		t.Text, t.Completed, utc(t.UpdatedAt), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) DeleteTodo(ctx context.Context, userID, id int) error {
	n, err := q.exec(ctx, `DELETE FROM todos WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) TodoStats(ctx context.Context, userID int) (TodoStats, error) {
	var s TodoStats
	var err error
	if s.Total, err = q.count(ctx, `SELECT COUNT(*) FROM todos WHERE user_id=?`, userID); err != nil {
		return TodoStats{}, fmt.Errorf("count todos: %w", err)
	}
	if s.Completed, err = q.count(ctx, `SELECT COUNT(*) FROM todos WHERE user_id=? AND completed=?`, userID, true); err != nil {
		return TodoStats{}, fmt.Errorf("count completed todos: %w", err)
	}
	s.Pending = s.Total - s.Completed
	return s, nil
}
