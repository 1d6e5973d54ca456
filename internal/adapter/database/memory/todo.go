package memory

import (
	"context"
	"sort"
	"time"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
)

// TodoRepository hands out copies so callers never alias stored rows.
type TodoRepository struct {
	store *Store
}

func NewTodoRepository(store *Store) port.TodoRepository {
	return &TodoRepository{store: store}
}

func (r *TodoRepository) GetTodos(ctx context.Context, userId int) ([]domain.Todo, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	todos := []domain.Todo{}

	for _, todo := range r.store.todos {
		if todo.BelongsToUser(userId) {
			todos = append(todos, todo.Copy())
		}
	}

	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })

	return todos, nil
}

func (r *TodoRepository) CreateTodo(ctx context.Context, userId int, todo domain.Todo) (domain.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := todo.Copy()
	stored.ID = r.store.nextTodoID
	stored.UserId = userId
	stored.Completed = false

	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	stored.CreatedAt = stored.CreatedAt.UTC()

	if stored.Deadline != nil {
		d := stored.Deadline.UTC()
		stored.Deadline = &d
	}

	r.store.nextTodoID++
	r.store.todos[stored.ID] = stored

	return stored.Copy(), nil
}

func (r *TodoRepository) UpdateTodo(ctx context.Context, id int, userId int, completed bool) (domain.Todo, error) {
	return r.update(id, userId, func(todo domain.Todo) domain.Todo {
		todo.Completed = completed
		return todo
	})
}

func (r *TodoRepository) UpdateTodoDetails(ctx context.Context, id int, userId int, changes domain.TodoChanges) (domain.Todo, error) {
	return r.update(id, userId, changes.Apply)
}

func (r *TodoRepository) update(id int, userId int, apply func(domain.Todo) domain.Todo) (domain.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todo, ok := r.store.todos[id]

	if !ok || !todo.BelongsToUser(userId) {
		return domain.Todo{}, domain.ErrNotFoundOrUnauthorized
	}

	updated := apply(todo.Copy())
	r.store.todos[id] = updated

	return updated.Copy(), nil
}

func (r *TodoRepository) DeleteTodo(ctx context.Context, id int, userId int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if todo, ok := r.store.todos[id]; ok && todo.BelongsToUser(userId) {
		delete(r.store.todos, id)
	}

	return nil
}

func (r *TodoRepository) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0

	for _, todo := range r.store.todos {
		if todo.IsOverdue(now) {
			count++
		}
	}

	return count, nil
}
