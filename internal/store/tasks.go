// internal/store/tasks.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultTaskLimit = 100
	MaxTaskLimit     = 1000
)

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskFilter restringe un listado de tareas. Los valores cero significan "sin
// filtro", salvo Limit, que pasa a DefaultTaskLimit.
type TaskFilter struct {
	Skip         int
	Limit        int
	Completed    *bool
	Search       string
	CreatedAfter *time.Time
}

func (f TaskFilter) normalized() TaskFilter {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultTaskLimit
	}
	if f.Limit > MaxTaskLimit {
		f.Limit = MaxTaskLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

type TaskStats struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	CompletionRate float64 `json:"completion_rate"`
	TasksThisWeek  int     `json:"tasks_this_week"`
}

func newTaskStats(total, completed, recent int) *TaskStats {
	stats := &TaskStats{
		TotalTasks:     total,
		CompletedTasks: completed,
		PendingTasks:   total - completed,
		TasksThisWeek:  recent,
	}
	if total > 0 {
		stats.CompletionRate = math.Round(float64(completed)/float64(total)*100*100) / 100
	}
	return stats
}

type TaskStore struct {
	db *sql.DB
}

func (s *TaskStore) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (title, description, completed, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRowContext(ctx, query, task.Title, task.Description, task.Completed, task.UserID).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*Task, error) {
	query := `
		SELECT id, title, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var task Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.Title, &task.Description, &task.Completed, &task.UserID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// List devuelve una página de las tareas del usuario, las más recientes
// primero, y el total de tareas que cumplen el filtro.
func (s *TaskStore) List(ctx context.Context, userID int64, filter TaskFilter) ([]Task, int, error) {
	filter = filter.normalized()

	where := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Skip)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update guarda title, description y completed y actualiza UpdatedAt.
func (s *TaskStore) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRowContext(ctx, query, task.Title, task.Description, task.Completed, task.ID).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats agrega las tareas del usuario; since marca el inicio de "esta semana".
func (s *TaskStore) Stats(ctx context.Context, userID int64, since time.Time) (*TaskStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE completed),
		       COUNT(*) FILTER (WHERE created_at >= $2)
		FROM tasks
		WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total, completed, recent int
	if err := s.db.QueryRowContext(ctx, query, userID, since).Scan(&total, &completed, &recent); err != nil {
		return nil, err
	}
	return newTaskStats(total, completed, recent), nil
}
