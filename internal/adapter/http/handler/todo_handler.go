package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	. "tasktracker/internal/adapter/http/helper"
	"tasktracker/internal/adapter/http/middleware"
	. "tasktracker/internal/adapter/http/validation"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/filter"
	"tasktracker/internal/core/model/request"
	"tasktracker/internal/core/model/response"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/util"
	. "tasktracker/pkg/tracing"
)

type TodoHandler struct {
	svc        port.TodoService
	categories port.CategoryService
}

func NewTodoHandler(svc port.TodoService, categories port.CategoryService) *TodoHandler {
	return &TodoHandler{
		svc:        svc,
		categories: categories,
	}
}

// GetTodos lists the caller's todos narrowed and ordered by the query
// parameters, each with its resolved category.
func (t *TodoHandler) GetTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetTodos"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	userId, _ := middleware.GetUserID(c)

	params, err := util.QueryToStruct[request.TodoFilterRequest](c)

	if err != nil {
		SendBadRequestError(c, "query", "Invalid filter parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todos, err := t.svc.GetTodos(ctx, userId)

	if err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err)
		return
	}

	categories, err := t.categories.GetCategories(ctx, userId)

	if err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err)
		return
	}

	filtered := filter.Apply(todos, filter.Spec{
		Category:      params.Category,
		Completed:     params.Completed,
		Label:         params.Label,
		SortBy:        filter.SortBy(params.SortBy),
		SortDirection: filter.Direction(params.SortDirection),
	})

	data := make([]response.TodoResponse, 0, len(filtered))

	for _, todo := range filtered {
		data = append(data, response.TodoResponse{
			Todo:     todo,
			Category: filter.ResolveCategory(categories, todo.CategoryId),
		})
	}

	span.SetAttributes(
		attribute.Int("todo.total", len(todos)),
		attribute.Int("todo.returned", len(data)),
	)

	SendSuccess(c, http.StatusOK, data)
}

func (t *TodoHandler) GetLabels(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	todos, err := t.svc.GetTodos(c.Request.Context(), userId)

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, filter.AvailableLabels(todos))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	params, err := util.ParamsToMap[request.TodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo := domain.Todo{
		Title:      params.Title,
		CategoryId: params.CategoryId,
		Labels:     params.Labels,
	}

	if strings.TrimSpace(params.Deadline) != "" {
		deadline, _ := util.ParseDeadline(params.Deadline)
		todo.Deadline = &deadline
	}

	created, err := t.svc.CreateTodo(c.Request.Context(), userId, todo)

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusCreated, created)
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	id, err := util.IDParam(c, "id")

	if err != nil {
		SendBadRequestError(c, "id", err.Error())
		return
	}

	params, err := util.ParamsToMap[request.TodoCompletedRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	updated, err := t.svc.UpdateTodo(c.Request.Context(), id, userId, *params.Completed)

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, updated)
}

func (t *TodoHandler) UpdateTodoDetails(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	id, err := util.IDParam(c, "id")

	if err != nil {
		SendBadRequestError(c, "id", err.Error())
		return
	}

	params, err := util.ParamsToMap[request.TodoDetailsRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	updated, err := t.svc.UpdateTodoDetails(c.Request.Context(), id, userId, detailsChanges(params))

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, updated)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	id, err := util.IDParam(c, "id")

	if err != nil {
		SendBadRequestError(c, "id", err.Error())
		return
	}

	if err := t.svc.DeleteTodo(c.Request.Context(), id, userId); err != nil {
		SendServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// detailsChanges converts an already validated details request. An empty
// deadline string clears the deadline.
func detailsChanges(params request.TodoDetailsRequest) domain.TodoChanges {
	changes := domain.TodoChanges{
		Title:      params.Title,
		CategoryId: params.CategoryId,
	}

	if params.Labels != nil {
		changes.Labels = *params.Labels
		changes.SetLabels = true
	}

	if params.Deadline != nil {
		if strings.TrimSpace(*params.Deadline) == "" {
			changes.ClearDeadline = true
		} else {
			deadline, _ := util.ParseDeadline(*params.Deadline)
			changes.Deadline = &deadline
		}
	}

	return changes
}
