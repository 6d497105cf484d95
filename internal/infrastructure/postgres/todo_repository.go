package postgres

import (
	"context"
	"errors"

	domain "todolist/backend/internal/domain/todo"

	"github.com/jackc/pgx/v5"
)

// TodoRepository persists todos in PostgreSQL.
type TodoRepository struct {
	db DBTX
}

// NewTodoRepository constructs a repository.
func NewTodoRepository(db DBTX) *TodoRepository {
	return &TodoRepository{db: db}
}

var _ domain.Repository = (*TodoRepository)(nil)

const todoColumns = `id, title, description, status, due_time, user_id, created_at, updated_at`

// Create inserts a new todo.
func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	const query = `
INSERT INTO todos (id, title, description, status, due_time, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.db.Exec(ctx, query,
		todo.ID,
		todo.Title,
		todo.Description,
		string(todo.Status),
		todo.DueTime,
		todo.UserID,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	return err
}

// GetByID fetches a todo by id.
func (r *TodoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	todo, err := scanTodo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return todo, nil
}

// List returns all todos ordered by creation time.
func (r *TodoRepository) List(ctx context.Context) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at ASC`
	return r.query(ctx, query)
}

// ListByUser returns the todos owned by userID.
func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ORDER BY created_at ASC`
	return r.query(ctx, query, userID)
}

// Update writes todo changes to the database.
func (r *TodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	const query = `
UPDATE todos
SET title = $2,
    description = $3,
    status = $4,
    due_time = $5,
    updated_at = $6
WHERE id = $1
`
	tag, err := r.db.Exec(ctx, query,
		todo.ID,
		todo.Title,
		todo.Description,
		string(todo.Status),
		todo.DueTime,
		todo.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a todo by id.
func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM todos WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TodoRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Todo, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []*domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var (
		t      domain.Todo
		status string
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&t.DueTime,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	return &t, nil
}
