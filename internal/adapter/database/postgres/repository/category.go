package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"tasktracker/internal/adapter/database/postgres"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/pkg/tracing"
)

type CategoryRepository struct {
	db *postgres.DB
}

func NewCategoryRepository(db *postgres.DB) port.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (cr *CategoryRepository) GetCategories(ctx context.Context, userId int) ([]domain.Category, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "categories", "SELECT", userId)
	defer span.End()

	stmt, args, err := cr.db.QueryBuilder.Select("id", "user_id", "name", "color").
		From("categories").
		Where(sq.Eq{"user_id": userId}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := cr.db.Query(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, postgres.StorageError("category.GetCategories", err)
	}

	defer rows.Close()

	categories := []domain.Category{}

	for rows.Next() {
		var category domain.Category

		if err := rows.Scan(&category.ID, &category.UserId, &category.Name, &category.Color); err != nil {
			return nil, postgres.StorageError("category.GetCategories", err)
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.StorageError("category.GetCategories", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(categories)))

	return categories, nil
}

func (cr *CategoryRepository) CreateCategory(ctx context.Context, userId int, category domain.Category) (domain.Category, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "categories", "INSERT", userId)
	defer span.End()

	stmt, args, err := cr.db.QueryBuilder.Insert("categories").
		Columns("user_id", "name", "color").
		Values(userId, category.Name, category.Color).
		Suffix("RETURNING id, user_id, name, color").
		ToSql()

	if err != nil {
		return domain.Category{}, err
	}

	var saved domain.Category

	err = cr.db.QueryRow(ctx, stmt, args...).Scan(&saved.ID, &saved.UserId, &saved.Name, &saved.Color)

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Category{}, postgres.StorageError("category.CreateCategory", err)
	}

	return saved, nil
}

func (cr *CategoryRepository) DeleteCategory(ctx context.Context, id int, userId int) error {
	ctx, span := tracing.DatabaseSpan(ctx, "postgresql", "categories", "DELETE", userId)
	defer span.End()

	stmt, args, err := cr.db.QueryBuilder.Delete("categories").
		Where(sq.Eq{"id": id, "user_id": userId}).
		ToSql()

	if err != nil {
		return err
	}

	tag, err := cr.db.Exec(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return postgres.StorageError("category.DeleteCategory", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))

	return nil
}
