package memory

import (
	"context"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) port.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]

	if !ok {
		return domain.User{}, domain.ErrNotFoundOrUnauthorized
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.Username == username {
			return user, nil
		}
	}

	return domain.User{}, domain.ErrNotFoundOrUnauthorized
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Username == user.Username {
			return domain.User{}, domain.ErrUsernameTaken
		}
	}

	user.ID = r.store.nextUserID
	r.store.nextUserID++
	r.store.users[user.ID] = user

	return user, nil
}
