package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"tasktracker/internal/adapter/database/sqlite"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/pkg/tracing"
)

type UserRepository struct {
	db *sqlite.DB
}

func NewUserRepository(db *sqlite.DB) port.UserRepository {
	return &UserRepository{db: db}
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	return ur.getBy(ctx, "GetByID", sq.Eq{"id": id})
}

func (ur *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return ur.getBy(ctx, "GetByUsername", sq.Eq{"username": username})
}

func (ur *UserRepository) getBy(ctx context.Context, operation string, where sq.Eq) (domain.User, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "users", operation, 0)
	defer span.End()

	query, args, err := ur.db.QueryBuilder.Select("id", "username", "password").
		From("users").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var user domain.User

	err = ur.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &user.Password)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFoundOrUnauthorized
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.User{}, sqlite.StorageError("user."+operation, err)
	}

	return user, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := tracing.DatabaseSpan(ctx, "sqlite", "users", "INSERT", 0)
	defer span.End()

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("username", "password").
		Values(user.Username, user.Password).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	if err := ur.db.QueryRowContext(ctx, query, args...).Scan(&user.ID); err != nil {
		tracing.AddSpanError(span, err)
		return domain.User{}, sqlite.StorageError("user.Create", err)
	}

	return user, nil
}
