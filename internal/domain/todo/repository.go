package todo

import "context"

// Repository defines persistence behaviours for todos.
type Repository interface {
	Create(ctx context.Context, todo *Todo) error
	GetByID(ctx context.Context, id string) (*Todo, error)
	List(ctx context.Context) ([]*Todo, error)
	ListByUser(ctx context.Context, userID string) ([]*Todo, error)
	Update(ctx context.Context, todo *Todo) error
	Delete(ctx context.Context, id string) error
}
