package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"karwan-auliya/internal/domains/book/model"
	"karwan-auliya/internal/domains/book/service"
	"karwan-auliya/internal/shared/response"
)

var errorMap = []response.ErrorMapping{
	{Err: model.ErrBookNotFound, Status: http.StatusNotFound, Code: "BOOK_NOT_FOUND"},
	{Err: model.ErrNothingToUpdate, Status: http.StatusBadRequest, Code: "NOTHING_TO_UPDATE"},
	{Err: model.ErrCategoryNotFound, Status: http.StatusBadRequest, Code: "CATEGORY_NOT_FOUND"},
}

type BookHandler struct {
	service *service.Service
}

func NewBookHandler(svc *service.Service) *BookHandler {
	return &BookHandler{service: svc}
}

// List - GET /api/v1/books
func (h *BookHandler) List(c *gin.Context) {
	var f model.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	books, err := h.service.List(c.Request.Context(), f).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{Limit: f.Limit, Offset: f.Offset, Total: len(books)})
}

// Get - GET /api/v1/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.service.Get(c.Request.Context(), c.Param("id")).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// Featured - GET /api/v1/books/featured?limit=
func (h *BookHandler) Featured(c *gin.Context) {
	books, err := h.service.Featured(c.Request.Context(), limitParam(c)).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// Popular - GET /api/v1/books/popular?limit=
func (h *BookHandler) Popular(c *gin.Context) {
	books, err := h.service.Popular(c.Request.Context(), limitParam(c)).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// QuickSearch - GET /api/v1/books/quick-search?q=
func (h *BookHandler) QuickSearch(c *gin.Context) {
	books, err := h.service.QuickSearch(c.Request.Context(), c.Query("q")).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	response.Success(c, http.StatusOK, books)
}

// Create - POST /api/v1/admin/books
func (h *BookHandler) Create(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusCreated, book)
}

// Update - PATCH /api/v1/admin/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// Delete - DELETE /api/v1/admin/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	c.Status(http.StatusNoContent)
}

func bookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return uuid.Nil, false
	}
	return id, true
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
