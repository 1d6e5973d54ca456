package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tasktracker/internal/adapter/database/sqlite"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/pkg/tracing"
)

var returningTodo = "RETURNING " + strings.Join(sqlite.TodoColumns, ", ")

type TodoRepository struct {
	db *sqlite.DB
}

func NewTodoRepository(db *sqlite.DB) port.TodoRepository {
	return &TodoRepository{db: db}
}

func (tr *TodoRepository) GetTodos(ctx context.Context, userId int) ([]domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "todos", "SELECT", userId)
	defer span.End()

	query, args, err := tr.db.QueryBuilder.Select(sqlite.TodoColumns...).
		From("todos").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, sqlite.StorageError("todo.GetTodos", err)
	}

	defer rows.Close()

	todos := []domain.Todo{}

	for rows.Next() {
		todo, err := sqlite.ScanTodo(rows)

		if err != nil {
			return nil, sqlite.StorageError("todo.GetTodos", err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, sqlite.StorageError("todo.GetTodos", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(todos)))

	return todos, nil
}

func (tr *TodoRepository) CreateTodo(ctx context.Context, userId int, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "todos", "INSERT", userId)
	defer span.End()

	createdAt := todo.CreatedAt

	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var deadline any

	if todo.Deadline != nil {
		deadline = todo.Deadline.UTC()
	}

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("user_id", "title", "completed", "deadline", "category_id", "labels", "created_at").
		Values(userId, todo.Title, false, deadline, todo.CategoryId, sqlite.Labels(todo.Labels), createdAt.UTC()).
		Suffix(returningTodo).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	saved, err := sqlite.ScanTodo(tr.db.QueryRowContext(ctx, query, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, sqlite.StorageError("todo.CreateTodo", err)
	}

	return saved, nil
}

func (tr *TodoRepository) UpdateTodo(ctx context.Context, id int, userId int, completed bool) (domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "todos", "UPDATE", userId)
	defer span.End()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("completed", completed).
		Where(sq.Eq{"id": id, "user_id": userId}).
		Suffix(returningTodo).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	return tr.scanOwned(ctx, span, "todo.UpdateTodo", query, args)
}

func (tr *TodoRepository) UpdateTodoDetails(ctx context.Context, id int, userId int, changes domain.TodoChanges) (domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "todos", "UPDATE", userId)
	defer span.End()

	owned := sq.Eq{"id": id, "user_id": userId}

	if changes.IsEmpty() {
		query, args, err := tr.db.QueryBuilder.Select(sqlite.TodoColumns...).
			From("todos").
			Where(owned).
			ToSql()

		if err != nil {
			return domain.Todo{}, err
		}

		return tr.scanOwned(ctx, span, "todo.UpdateTodoDetails", query, args)
	}

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(detailsSetMap(changes)).
		Where(owned).
		Suffix(returningTodo).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	return tr.scanOwned(ctx, span, "todo.UpdateTodoDetails", query, args)
}

func (tr *TodoRepository) DeleteTodo(ctx context.Context, id int, userId int) error {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "todos", "DELETE", userId)
	defer span.End()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id, "user_id": userId}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return sqlite.StorageError("todo.DeleteTodo", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", affected))
	}

	return nil
}

func (tr *TodoRepository) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "todos", "COUNT", 0)
	defer span.End()

	query, args, err := tr.db.QueryBuilder.Select("COUNT(*)").
		From("todos").
		Where(sq.Eq{"completed": false}).
		Where(sq.NotEq{"deadline": nil}).
		Where(sq.Lt{"deadline": now.UTC()}).
		ToSql()

	if err != nil {
		return 0, err
	}

	var count int

	if err := tr.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		tracing.AddSpanError(span, err)
		return 0, sqlite.StorageError("todo.CountOverdue", err)
	}

	return count, nil
}

func (tr *TodoRepository) scanOwned(ctx context.Context, span trace.Span, op string, query string, args []any) (domain.Todo, error) {
	todo, err := sqlite.ScanTodo(tr.db.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFoundOrUnauthorized
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, sqlite.StorageError(op, err)
	}

	return todo, nil
}

func detailsSetMap(changes domain.TodoChanges) map[string]any {
	set := map[string]any{}

	if changes.Title != nil {
		set["title"] = *changes.Title
	}

	if changes.CategoryId != nil {
		set["category_id"] = *changes.CategoryId
	}

	if changes.SetLabels {
		set["labels"] = sqlite.Labels(changes.Labels)
	}

	if changes.ClearDeadline {
		set["deadline"] = nil
	} else if changes.Deadline != nil {
		set["deadline"] = changes.Deadline.UTC()
	}

	return set
}
