package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	. "tasktracker/internal/adapter/http/helper"
	"tasktracker/internal/adapter/http/middleware"
	. "tasktracker/internal/adapter/http/validation"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/model/request"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/util"
)

type CategoryHandler struct {
	svc port.CategoryService
}

func NewCategoryHandler(svc port.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	categories, err := h.svc.GetCategories(c.Request.Context(), userId)

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	params, err := util.ParamsToMap[request.CategoryRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	category, err := h.svc.CreateCategory(c.Request.Context(), userId, domain.Category{
		Name:  params.Name,
		Color: params.Color,
	})

	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusCreated, category)
}

// DeleteCategory answers 204 whether or not the caller owned the category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userId, _ := middleware.GetUserID(c)

	id, err := util.IDParam(c, "id")

	if err != nil {
		SendBadRequestError(c, "id", err.Error())
		return
	}

	if err := h.svc.DeleteCategory(c.Request.Context(), id, userId); err != nil {
		SendServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
