package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"tasktracker/internal/adapter/database/sqlite"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/pkg/tracing"
)

type CategoryRepository struct {
	db *sqlite.DB
}

func NewCategoryRepository(db *sqlite.DB) port.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (cr *CategoryRepository) GetCategories(ctx context.Context, userId int) ([]domain.Category, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "categories", "SELECT", userId)
	defer span.End()

	query, args, err := cr.db.QueryBuilder.Select(sqlite.CategoryColumns...).
		From("categories").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := cr.db.QueryContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, sqlite.StorageError("category.GetCategories", err)
	}

	defer rows.Close()

	categories := []domain.Category{}

	for rows.Next() {
		category, err := sqlite.ScanCategory(rows)

		if err != nil {
			return nil, sqlite.StorageError("category.GetCategories", err)
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, sqlite.StorageError("category.GetCategories", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(categories)))

	return categories, nil
}

func (cr *CategoryRepository) CreateCategory(ctx context.Context, userId int, category domain.Category) (domain.Category, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "categories", "INSERT", userId)
	defer span.End()

	query, args, err := cr.db.QueryBuilder.Insert("categories").
		Columns("user_id", "name", "color").
		Values(userId, category.Name, category.Color).
		Suffix("RETURNING id, user_id, name, color").
		ToSql()

	if err != nil {
		return domain.Category{}, err
	}

	saved, err := sqlite.ScanCategory(cr.db.QueryRowContext(ctx, query, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Category{}, sqlite.StorageError("category.CreateCategory", err)
	}

	return saved, nil
}

// DeleteCategory removes the category only when userId owns it. Todos that
// reference it keep their category id.
func (cr *CategoryRepository) DeleteCategory(ctx context.Context, id int, userId int) error {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "categories", "DELETE", userId)
	defer span.End()

	query, args, err := cr.db.QueryBuilder.Delete("categories").
		Where(sq.Eq{"id": id, "user_id": userId}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := cr.db.ExecContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return sqlite.StorageError("category.DeleteCategory", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", affected))
	}

	return nil
}
