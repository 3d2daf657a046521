package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"karwan-auliya/internal/domains/category/model"
	"karwan-auliya/internal/domains/category/service"
	"karwan-auliya/internal/shared/response"
	"karwan-auliya/internal/shared/utils"
)

var errorMap = []response.ErrorMapping{
	{Err: model.ErrCategoryNotFound, Status: http.StatusNotFound, Code: "CATEGORY_NOT_FOUND"},
	{Err: model.ErrDuplicateSlug, Status: http.StatusConflict, Code: "DUPLICATE_SLUG"},
	{Err: model.ErrInvalidParent, Status: http.StatusBadRequest, Code: "INVALID_PARENT"},
}

type CategoryHandler struct {
	service *service.Service
}

func NewCategoryHandler(svc *service.Service) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List - GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	data, err := h.service.List(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, data)
}

// ListParents - GET /api/v1/categories/parents
func (h *CategoryHandler) ListParents(c *gin.Context) {
	data, err := h.service.ListParents(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, data)
}

// GetBySlug - GET /api/v1/categories/:slug
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	data, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug")).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	if data == nil {
		response.NotFound(c, "category not found")
		return
	}
	response.Success(c, http.StatusOK, data)
}

// ListSubcategories - GET /api/v1/categories/:slug/subcategories
func (h *CategoryHandler) ListSubcategories(c *gin.Context) {
	data, err := h.service.ListSubcategories(c.Request.Context(), c.Param("slug")).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, data)
}

// Create - POST /api/v1/admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req model.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// Delete - DELETE /api/v1/admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid category id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	c.Status(http.StatusNoContent)
}
