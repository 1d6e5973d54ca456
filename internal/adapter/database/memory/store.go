// Package memory keeps users, categories and todos in process memory. It
// satisfies the same repository contract as the SQL adapters.
package memory

import (
	"sync"

	"tasktracker/internal/core/domain"
)

type Store struct {
	mu sync.RWMutex

	users      map[int]domain.User
	categories map[int]domain.Category
	todos      map[int]domain.Todo

	nextUserID     int
	nextCategoryID int
	nextTodoID     int
}

func NewStore() *Store {
	return &Store{
		users:          make(map[int]domain.User),
		categories:     make(map[int]domain.Category),
		todos:          make(map[int]domain.Todo),
		nextUserID:     1,
		nextCategoryID: 1,
		nextTodoID:     1,
	}
}
