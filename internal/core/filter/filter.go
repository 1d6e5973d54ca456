// Package filter narrows and orders a user's todo list in memory.
package filter

import (
	"slices"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tasktracker/internal/core/domain"
)

type SortBy string

const (
	SortByDeadline SortBy = "deadline"
	SortByTitle    SortBy = "title"
	SortByCreated  SortBy = "created"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Spec holds the optional criteria. Nil criteria match everything and an
// empty SortBy keeps the input order.
type Spec struct {
	Category      *int
	Completed     *bool
	Label         *string
	SortBy        SortBy
	SortDirection Direction
}

func (s Spec) IsEmpty() bool {
	return s.Category == nil && s.Completed == nil && s.Label == nil && s.SortBy == ""
}

func (s Spec) Matches(todo domain.Todo) bool {
	if s.Category != nil && (todo.CategoryId == nil || *todo.CategoryId != *s.Category) {
		return false
	}

	if s.Completed != nil && todo.Completed != *s.Completed {
		return false
	}

	if s.Label != nil && !todo.HasLabel(*s.Label) {
		return false
	}

	return true
}

// Apply returns a new slice holding the matching todos in the requested
// order. The input is never modified.
func Apply(todos []domain.Todo, spec Spec) []domain.Todo {
	out := make([]domain.Todo, 0, len(todos))

	for _, todo := range todos {
		if spec.Matches(todo) {
			out = append(out, todo)
		}
	}

	desc := spec.SortDirection == Desc

	switch spec.SortBy {
	case SortByCreated:
		sort.SliceStable(out, func(i, j int) bool {
			return before(out[i].CreatedAt, out[j].CreatedAt, desc)
		})
	case SortByTitle:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			cmp := col.CompareString(out[i].Title, out[j].Title)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	case SortByDeadline:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Deadline, out[j].Deadline

			// Todos without a deadline go last in both directions.
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}

			return before(*a, *b, desc)
		})
	}

	return out
}

func before(a, b time.Time, desc bool) bool {
	if desc {
		return a.After(b)
	}
	return a.Before(b)
}

// AvailableLabels returns the sorted set of labels used across todos.
func AvailableLabels(todos []domain.Todo) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0)

	for _, todo := range todos {
		for _, label := range todo.Labels {
			if _, ok := seen[label]; ok {
				continue
			}

			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}

	slices.Sort(labels)

	return labels
}

// ResolveCategory finds the category a todo points at. A missing or dangling
// reference resolves to nil.
func ResolveCategory(categories []domain.Category, categoryID *int) *domain.Category {
	if categoryID == nil {
		return nil
	}

	for i := range categories {
		if categories[i].ID == *categoryID {
			category := categories[i]
			return &category
		}
	}

	return nil
}
