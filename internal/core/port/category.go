package port

import (
	"context"

	"tasktracker/internal/core/domain"
)

// CategoryRepository scopes every operation to the owning user id.
type CategoryRepository interface {
	GetCategories(ctx context.Context, userId int) ([]domain.Category, error)
	CreateCategory(ctx context.Context, userId int, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id int, userId int) error
}

type CategoryService interface {
	GetCategories(ctx context.Context, userId int) ([]domain.Category, error)
	CreateCategory(ctx context.Context, userId int, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id int, userId int) error
}
