package request

type UserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CategoryRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

type TodoRequest struct {
	Title      string   `json:"title" validate:"required,notblank"`
	Deadline   string   `json:"deadline" validate:"omitempty,deadline"`
	CategoryId *int     `json:"categoryId"`
	Labels     []string `json:"labels" validate:"omitempty,dive,required"`
}

// TodoDetailsRequest is a partial TodoRequest; absent fields are not touched.
// An empty deadline clears it.
type TodoDetailsRequest struct {
	Title      *string   `json:"title" validate:"omitnil,min=1,notblank"`
	Deadline   *string   `json:"deadline" validate:"omitempty,deadline"`
	CategoryId *int      `json:"categoryId"`
	Labels     *[]string `json:"labels" validate:"omitempty,dive,required"`
}

type TodoCompletedRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

type TodoFilterRequest struct {
	Category      *int    `form:"category"`
	Completed     *bool   `form:"completed"`
	Label         *string `form:"label"`
	SortBy        string  `form:"sortBy" validate:"omitempty,oneof=deadline title created"`
	SortDirection string  `form:"sortDirection" validate:"omitempty,oneof=asc desc"`
}
