package port

import (
	"context"
	"time"

	"tasktracker/internal/core/domain"
)

// TodoRepository scopes every operation to the owning user id. Updates and
// deletes match on id and user id in a single statement.
type TodoRepository interface {
	GetTodos(ctx context.Context, userId int) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, userId int, todo domain.Todo) (domain.Todo, error)
	UpdateTodo(ctx context.Context, id int, userId int, completed bool) (domain.Todo, error)
	UpdateTodoDetails(ctx context.Context, id int, userId int, changes domain.TodoChanges) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id int, userId int) error
	CountOverdue(ctx context.Context, now time.Time) (int, error)
}

type TodoService interface {
	GetTodos(ctx context.Context, userId int) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, userId int, todo domain.Todo) (domain.Todo, error)
	UpdateTodo(ctx context.Context, id int, userId int, completed bool) (domain.Todo, error)
	UpdateTodoDetails(ctx context.Context, id int, userId int, changes domain.TodoChanges) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id int, userId int) error
	OverdueCount(ctx context.Context, now time.Time) (int, error)
}
