package domain

import (
	"slices"
	"time"
)

type Todo struct {
	ID         int        `json:"id"`
	UserId     int        `json:"userId"`
	Title      string     `json:"title"`
	Completed  bool       `json:"completed"`
	Deadline   *time.Time `json:"deadline"`
	CategoryId *int       `json:"categoryId"`
	Labels     []string   `json:"labels"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// TodoChanges carries the fields of a details update. Nil fields are left
// untouched; ClearDeadline removes the deadline and wins over Deadline.
type TodoChanges struct {
	Title         *string
	CategoryId    *int
	Labels        []string
	SetLabels     bool
	Deadline      *time.Time
	ClearDeadline bool
}

func (c TodoChanges) IsEmpty() bool {
	return c.Title == nil && c.CategoryId == nil && !c.SetLabels && c.Deadline == nil && !c.ClearDeadline
}

// Apply returns a copy of t with the changes applied.
func (c TodoChanges) Apply(t Todo) Todo {
	out := t.Copy()

	if c.Title != nil {
		out.Title = *c.Title
	}

	if c.CategoryId != nil {
		id := *c.CategoryId
		out.CategoryId = &id
	}

	if c.SetLabels {
		out.Labels = NormalizeLabels(c.Labels)
	}

	if c.ClearDeadline {
		out.Deadline = nil
	} else if c.Deadline != nil {
		d := c.Deadline.UTC()
		out.Deadline = &d
	}

	return out
}

func (t *Todo) BelongsToUser(userID int) bool {
	return t.UserId == userID
}

func (t *Todo) HasLabel(label string) bool {
	return slices.Contains(t.Labels, label)
}

func (t *Todo) IsOverdue(now time.Time) bool {
	return !t.Completed && t.Deadline != nil && t.Deadline.Before(now)
}

// Copy returns a deep copy so callers never share label slices or pointer
// fields with a store.
func (t Todo) Copy() Todo {
	out := t
	out.Labels = NormalizeLabels(t.Labels)

	if t.Deadline != nil {
		d := *t.Deadline
		out.Deadline = &d
	}

	if t.CategoryId != nil {
		id := *t.CategoryId
		out.CategoryId = &id
	}

	return out
}

// NormalizeLabels copies labels into a fresh non-nil slice.
func NormalizeLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}
