package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"karwan-auliya/internal/domains/library/model"
	"karwan-auliya/internal/domains/library/service"
	"karwan-auliya/internal/shared/response"
)

var errorMap = []response.ErrorMapping{
	{Err: model.ErrAlreadyInLibrary, Status: http.StatusConflict, Code: "ALREADY_IN_LIBRARY"},
	{Err: model.ErrAlreadyBookmarked, Status: http.StatusConflict, Code: "ALREADY_BOOKMARKED"},
	{Err: model.ErrNotInLibrary, Status: http.StatusNotFound, Code: "NOT_IN_LIBRARY"},
	{Err: model.ErrBookmarkNotFound, Status: http.StatusNotFound, Code: "BOOKMARK_NOT_FOUND"},
	{Err: model.ErrBookNotFound, Status: http.StatusNotFound, Code: "BOOK_NOT_FOUND"},
	{Err: model.ErrBookUnavailable, Status: http.StatusConflict, Code: "BOOK_UNAVAILABLE"},
	{Err: model.ErrNegativePage, Status: http.StatusBadRequest, Code: "INVALID_PAGE"},
	{Err: model.ErrInvalidTotalPages, Status: http.StatusBadRequest, Code: "INVALID_PAGE"},
	{Err: model.ErrEmptyBatch, Status: http.StatusBadRequest, Code: "EMPTY_BATCH"},
}

type LibraryHandler struct {
	service *service.Service
}

func NewLibraryHandler(svc *service.Service) *LibraryHandler {
	return &LibraryHandler{service: svc}
}

type bulkRequest struct {
	BookIDs []uuid.UUID `json:"book_ids"`
}

// bookParam reads the book id from :bookID, or :id on routes nested under
// /books/:id.
func bookParam(c *gin.Context) string {
	if v := c.Param("bookID"); v != "" {
		return v
	}
	return c.Param("id")
}

func bookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(bookParam(c))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return uuid.Nil, false
	}
	return id, true
}

// Library - GET /api/v1/me/library
func (h *LibraryHandler) Library(c *gin.Context) {
	entries, err := h.service.Library(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// AddToLibrary - POST /api/v1/me/library/:bookID
func (h *LibraryHandler) AddToLibrary(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	entry, err := h.service.AddToLibrary(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// RemoveFromLibrary - DELETE /api/v1/me/library/:bookID
func (h *LibraryHandler) RemoveFromLibrary(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveFromLibrary(c.Request.Context(), id); err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	c.Status(http.StatusNoContent)
}

// InLibrary - GET /api/v1/me/library/:bookID
func (h *LibraryHandler) InLibrary(c *gin.Context) {
	ok, err := h.service.InLibrary(c.Request.Context(), bookParam(c)).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"in_library": ok})
}

// Touch - POST /api/v1/me/library/:bookID/open
func (h *LibraryHandler) Touch(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	entry, err := h.service.Touch(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, entry)
}

// Bookmarks - GET /api/v1/me/bookmarks
func (h *LibraryHandler) Bookmarks(c *gin.Context) {
	bookmarks, err := h.service.Bookmarks(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, bookmarks)
}

// AddBookmark - POST /api/v1/me/bookmarks/:bookID
func (h *LibraryHandler) AddBookmark(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	bm, err := h.service.AddBookmark(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusCreated, bm)
}

// RemoveBookmark - DELETE /api/v1/me/bookmarks/:bookID
func (h *LibraryHandler) RemoveBookmark(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveBookmark(c.Request.Context(), id); err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	c.Status(http.StatusNoContent)
}

// IsBookmarked - GET /api/v1/me/bookmarks/:bookID
func (h *LibraryHandler) IsBookmarked(c *gin.Context) {
	ok, err := h.service.IsBookmarked(c.Request.Context(), bookParam(c)).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookmarked": ok})
}

// RemoveBookmarks - POST /api/v1/me/bookmarks/bulk-delete
// A partially failed batch answers 207 with the per-id outcome.
func (h *LibraryHandler) RemoveBookmarks(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RemoveBookmarks(c.Request.Context(), req.BookIDs)
	var failure model.BulkFailure
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, result)
	case errors.As(err, &failure):
		response.Success(c, http.StatusMultiStatus, result)
	default:
		response.HandleError(c, err, errorMap...)
	}
}

// AllProgress - GET /api/v1/me/progress
func (h *LibraryHandler) AllProgress(c *gin.Context) {
	list, err := h.service.AllProgress(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Progress - GET /api/v1/me/progress/:bookID
func (h *LibraryHandler) Progress(c *gin.Context) {
	p, err := h.service.Progress(c.Request.Context(), bookParam(c)).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UpdateProgress - PUT /api/v1/me/progress/:bookID
func (h *LibraryHandler) UpdateProgress(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req model.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.service.UpdateProgress(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Stats - GET /api/v1/me/stats
func (h *LibraryHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Download - POST /api/v1/books/:id/download
func (h *LibraryHandler) Download(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	dl, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, dl)
}
