package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"tasktracker/internal/core/domain"
)

// Labels stores a todo's labels as a JSON array in a TEXT column.
type Labels []string

func (l Labels) Value() (driver.Value, error) {
	data, err := json.Marshal(domain.NormalizeLabels(l))

	if err != nil {
		return nil, err
	}

	return string(data), nil
}

func (l *Labels) Scan(src any) error {
	var data []byte

	switch v := src.(type) {
	case nil:
		*l = Labels{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("labels: unsupported type %T", src)
	}

	var labels []string

	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}

	*l = domain.NormalizeLabels(labels)

	return nil
}

type RowScanner interface {
	Scan(dest ...any) error
}

var TodoColumns = []string{"id", "user_id", "title", "completed", "deadline", "category_id", "labels", "created_at"}

func ScanTodo(row RowScanner) (domain.Todo, error) {
	var (
		todo       domain.Todo
		deadline   sql.NullTime
		categoryID sql.NullInt64
		labels     Labels
	)

	err := row.Scan(&todo.ID, &todo.UserId, &todo.Title, &todo.Completed, &deadline, &categoryID, &labels, &todo.CreatedAt)

	if err != nil {
		return domain.Todo{}, err
	}

	if deadline.Valid {
		d := deadline.Time.UTC()
		todo.Deadline = &d
	}

	if categoryID.Valid {
		id := int(categoryID.Int64)
		todo.CategoryId = &id
	}

	todo.Labels = domain.NormalizeLabels(labels)
	todo.CreatedAt = todo.CreatedAt.UTC()

	return todo, nil
}

var CategoryColumns = []string{"id", "user_id", "name", "color"}

func ScanCategory(row RowScanner) (domain.Category, error) {
	var category domain.Category

	err := row.Scan(&category.ID, &category.UserId, &category.Name, &category.Color)

	return category, err
}
