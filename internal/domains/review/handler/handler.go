package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"karwan-auliya/internal/domains/review/model"
	"karwan-auliya/internal/domains/review/service"
	"karwan-auliya/internal/shared/response"
)

var errorMap = []response.ErrorMapping{
	{Err: model.ErrReviewNotFound, Status: http.StatusNotFound, Code: "REVIEW_NOT_FOUND"},
	{Err: model.ErrBookNotFound, Status: http.StatusNotFound, Code: "BOOK_NOT_FOUND"},
}

type ReviewHandler struct {
	service *service.Service
}

func NewReviewHandler(svc *service.Service) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// ListByBook - GET /api/v1/books/:id/reviews
func (h *ReviewHandler) ListByBook(c *gin.Context) {
	reviews, err := h.service.ListByBook(c.Request.Context(), c.Param("id")).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, reviews)
}

// Mine - GET /api/v1/books/:id/reviews/mine
func (h *ReviewHandler) Mine(c *gin.Context) {
	review, err := h.service.Mine(c.Request.Context(), c.Param("id")).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, review)
}

// Submit - PUT /api/v1/books/:id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.service.Submit(c.Request.Context(), bookID, req)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, review)
}

// Delete - DELETE /api/v1/books/:id/reviews
func (h *ReviewHandler) Delete(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}
	if err := h.service.Delete(c.Request.Context(), bookID); err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	c.Status(http.StatusNoContent)
}
