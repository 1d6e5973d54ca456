package memory

import (
	"context"
	"sort"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
)

type CategoryRepository struct {
	store *Store
}

func NewCategoryRepository(store *Store) port.CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) GetCategories(ctx context.Context, userId int) ([]domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	categories := []domain.Category{}

	for _, category := range r.store.categories {
		if category.BelongsToUser(userId) {
			categories = append(categories, category)
		}
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	return categories, nil
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, userId int, category domain.Category) (domain.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	category.ID = r.store.nextCategoryID
	category.UserId = userId
	r.store.nextCategoryID++
	r.store.categories[category.ID] = category

	return category, nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, id int, userId int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if category, ok := r.store.categories[id]; ok && category.BelongsToUser(userId) {
		delete(r.store.categories, id)
	}

	return nil
}
