package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tasktracker/internal/adapter/database/postgres"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/pkg/tracing"
)

var returningTodo = "RETURNING " + strings.Join(postgres.TodoColumns, ", ")

type TodoRepository struct {
	db *postgres.DB
}

func NewTodoRepository(db *postgres.DB) port.TodoRepository {
	return &TodoRepository{db: db}
}

func (tr *TodoRepository) GetTodos(ctx context.Context, userId int) ([]domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "todos", "SELECT", userId)
	defer span.End()

	stmt, args, err := tr.db.QueryBuilder.Select(postgres.TodoColumns...).
		From("todos").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.Query(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, postgres.StorageError("todo.GetTodos", err)
	}

	defer rows.Close()

	todos := []domain.Todo{}

	for rows.Next() {
		todo, err := postgres.ScanTodo(rows)

		if err != nil {
			return nil, postgres.StorageError("todo.GetTodos", err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.StorageError("todo.GetTodos", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(todos)))

	return todos, nil
}

func (tr *TodoRepository) CreateTodo(ctx context.Context, userId int, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "todos", "INSERT", userId)
	defer span.End()

	createdAt := todo.CreatedAt

	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	stmt, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("user_id", "title", "completed", "deadline", "category_id", "labels", "created_at").
		Values(userId, todo.Title, false, todo.Deadline, todo.CategoryId, domain.NormalizeLabels(todo.Labels), createdAt.UTC()).
		Suffix(returningTodo).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	saved, err := postgres.ScanTodo(tr.db.QueryRow(ctx, stmt, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, postgres.StorageError("todo.CreateTodo", err)
	}

	return saved, nil
}

func (tr *TodoRepository) UpdateTodo(ctx context.Context, id int, userId int, completed bool) (domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "todos", "UPDATE", userId)
	defer span.End()

	stmt, args, err := tr.db.QueryBuilder.Update("todos").
		Set("completed", completed).
		Where(sq.Eq{"id": id, "user_id": userId}).
		Suffix(returningTodo).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	return tr.scanOwned(ctx, span, "todo.UpdateTodo", stmt, args)
}

func (tr *TodoRepository) UpdateTodoDetails(ctx context.Context, id int, userId int, changes domain.TodoChanges) (domain.Todo, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "todos", "UPDATE", userId)
	defer span.End()

	owned := sq.Eq{"id": id, "user_id": userId}

	if changes.IsEmpty() {
		stmt, args, err := tr.db.QueryBuilder.Select(postgres.TodoColumns...).
			From("todos").
			Where(owned).
			ToSql()

		if err != nil {
			return domain.Todo{}, err
		}

		return tr.scanOwned(ctx, span, "todo.UpdateTodoDetails", stmt, args)
	}

	set := map[string]any{}

	if changes.Title != nil {
		set["title"] = *changes.Title
	}

	if changes.CategoryId != nil {
		set["category_id"] = *changes.CategoryId
	}

	if changes.SetLabels {
		set["labels"] = domain.NormalizeLabels(changes.Labels)
	}

	if changes.ClearDeadline {
		set["deadline"] = nil
	} else if changes.Deadline != nil {
		set["deadline"] = changes.Deadline.UTC()
	}

	stmt, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(set).
		Where(owned).
		Suffix(returningTodo).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	return tr.scanOwned(ctx, span, "todo.UpdateTodoDetails", stmt, args)
}

func (tr *TodoRepository) DeleteTodo(ctx context.Context, id int, userId int) error {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "todos", "DELETE", userId)
	defer span.End()

	stmt, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id, "user_id": userId}).
		ToSql()

	if err != nil {
		return err
	}

	tag, err := tr.db.Exec(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return postgres.StorageError("todo.DeleteTodo", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))

	return nil
}

func (tr *TodoRepository) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "todos", "COUNT", 0)
	defer span.End()

	stmt, args, err := tr.db.QueryBuilder.Select("COUNT(*)").
		From("todos").
		Where(sq.Eq{"completed": false}).
		Where(sq.NotEq{"deadline": nil}).
		Where(sq.Lt{"deadline": now.UTC()}).
		ToSql()

	if err != nil {
		return 0, err
	}

	var count int

	if err := tr.db.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		tracing.AddSpanError(span, err)
		return 0, postgres.StorageError("todo.CountOverdue", err)
	}

	return count, nil
}

func (tr *TodoRepository) scanOwned(ctx context.Context, span trace.Span, op string, stmt string, args []any) (domain.Todo, error) {
	todo, err := postgres.ScanTodo(tr.db.QueryRow(ctx, stmt, args...))

	if postgres.IsNoRows(err) {
		return domain.Todo{}, domain.ErrNotFoundOrUnauthorized
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, postgres.StorageError(op, err)
	}

	return todo, nil
}
