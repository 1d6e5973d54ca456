package response

import "tasktracker/internal/core/domain"

type UserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// TodoResponse is a todo plus its resolved category. Category is null when
// the todo has none or references a deleted one.
type TodoResponse struct {
	domain.Todo
	Category *domain.Category `json:"category"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
