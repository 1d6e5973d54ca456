package service

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/telemetry"
	ct "tasktracker/pkg/context"
	"tasktracker/pkg/tracing"
)

type TodoService struct {
	repo    port.TodoRepository
	lists   *ListCache[domain.Todo]
	metrics *telemetry.AppMetrics
	logger  *otelzap.Logger
}

func NewTodoService(repo port.TodoRepository, lists *ListCache[domain.Todo], metrics *telemetry.AppMetrics, logger *otelzap.Logger) *TodoService {
	return &TodoService{
		repo:    repo,
		lists:   lists,
		metrics: metrics,
		logger:  logger,
	}
}

func (ts *TodoService) GetTodos(ctx context.Context, userId int) ([]domain.Todo, error) {
	var todos []domain.Todo

	err := tracing.ServiceSpanWrapper(ctx, "todo", "GetTodos", userId, func(ctx context.Context) error {
		var err error
		todos, err = ts.lists.Load(ctx, userId, func(ctx context.Context) ([]domain.Todo, error) {
			return ts.repo.GetTodos(ctx, userId)
		})
		return err
	})

	ts.metrics.RecordTodoOperation(ctx, "list", err)

	if err != nil {
		ts.logger.Ctx(ctx).Error("todo list failed", zap.Int("user_id", userId), zap.Error(err))
		return nil, err
	}

	return todos, nil
}

// CreateTodo stores a new open todo stamped with the current time.
func (ts *TodoService) CreateTodo(ctx context.Context, userId int, todo domain.Todo) (domain.Todo, error) {
	todo = todo.Copy()
	todo.UserId = userId
	todo.Completed = false
	todo.CreatedAt = time.Now().UTC()

	if todo.Deadline != nil {
		deadline := todo.Deadline.UTC()
		todo.Deadline = &deadline
	}

	var created domain.Todo

	err := tracing.ServiceSpanWrapper(ctx, "todo", "CreateTodo", userId, func(ctx context.Context) error {
		var err error
		created, err = ts.repo.CreateTodo(ctx, userId, todo)
		return err
	})

	return created, ts.afterWrite(ctx, "create", userId, created.ID, err)
}

func (ts *TodoService) UpdateTodo(ctx context.Context, id int, userId int, completed bool) (domain.Todo, error) {
	var updated domain.Todo

	err := tracing.ServiceSpanWrapper(ctx, "todo", "UpdateTodo", userId, func(ctx context.Context) error {
		var err error
		updated, err = ts.repo.UpdateTodo(ctx, id, userId, completed)
		return err
	})

	return updated, ts.afterWrite(ctx, "toggle", userId, id, err)
}

func (ts *TodoService) UpdateTodoDetails(ctx context.Context, id int, userId int, changes domain.TodoChanges) (domain.Todo, error) {
	var updated domain.Todo

	err := tracing.ServiceSpanWrapper(ctx, "todo", "UpdateTodoDetails", userId, func(ctx context.Context) error {
		var err error
		updated, err = ts.repo.UpdateTodoDetails(ctx, id, userId, changes)
		return err
	})

	return updated, ts.afterWrite(ctx, "update", userId, id, err)
}

func (ts *TodoService) DeleteTodo(ctx context.Context, id int, userId int) error {
	err := tracing.ServiceSpanWrapper(ctx, "todo", "DeleteTodo", userId, func(ctx context.Context) error {
		return ts.repo.DeleteTodo(ctx, id, userId)
	})

	return ts.afterWrite(ctx, "delete", userId, id, err)
}

func (ts *TodoService) OverdueCount(ctx context.Context, now time.Time) (int, error) {
	return ts.repo.CountOverdue(ctx, now)
}

func (ts *TodoService) afterWrite(ctx context.Context, operation string, userId int, id int, err error) error {
	ts.metrics.RecordTodoOperation(ctx, operation, err)

	if err != nil {
		ts.logger.Ctx(ctx).Warn("todo "+operation+" failed",
			zap.Int("user_id", userId),
			zap.Int("todo_id", id),
			zap.String("request_id", ct.RequestIDFrom(ctx)),
			zap.Error(err))
		return err
	}

	ts.lists.Invalidate(ctx, userId)

	ts.logger.Ctx(ctx).Info("todo "+operation,
		zap.Int("user_id", userId),
		zap.Int("todo_id", id))

	return nil
}
