package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"karwan-auliya/internal/domains/book/service"
	"karwan-auliya/internal/shared/response"
	"karwan-auliya/internal/transfer"
)

// UploadIDHeader tags an upload so its progress can be polled.
const UploadIDHeader = "X-Upload-ID"

const forgetAfter = 2 * time.Second

type UploadHandler struct {
	books    *service.Service
	files    *transfer.Helper
	progress *transfer.Tracker
}

func NewUploadHandler(books *service.Service, files *transfer.Helper, progress *transfer.Tracker) *UploadHandler {
	return &UploadHandler{books: books, files: files, progress: progress}
}

// UploadCover - POST /api/v1/admin/books/:id/cover
func (h *UploadHandler) UploadCover(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	file, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeBody(file)

	uploadID := c.GetHeader(UploadIDHeader)
	defer h.forget(uploadID)

	res, err := h.files.UploadCover(c.Request.Context(), file, id.String(), h.progress.Start(uploadID))
	if err != nil {
		h.fail(c, err)
		return
	}

	book, err := h.books.AttachCover(c.Request.Context(), id, res.PublicURL)
	if err != nil {
		// the stored object has no book pointing at it
		h.files.Delete(c.Request.Context(), transfer.AreaCovers, res.Path)
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"upload": res, "book": book})
}

// UploadStandaloneCover - POST /api/v1/admin/uploads/cover
// Covers for books that are not created yet get a random name.
func (h *UploadHandler) UploadStandaloneCover(c *gin.Context) {
	file, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeBody(file)

	uploadID := c.GetHeader(UploadIDHeader)
	defer h.forget(uploadID)

	res, err := h.files.UploadCover(c.Request.Context(), file, "", h.progress.Start(uploadID))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// UploadFile - POST /api/v1/admin/books/:id/file
func (h *UploadHandler) UploadFile(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	file, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeBody(file)

	uploadID := c.GetHeader(UploadIDHeader)
	defer h.forget(uploadID)

	res, err := h.files.UploadBookFile(c.Request.Context(), file, id.String(), h.progress.Start(uploadID))
	if err != nil {
		h.fail(c, err)
		return
	}

	book, err := h.books.AttachFile(c.Request.Context(), id, res.Path, res.Pages)
	if err != nil {
		h.files.Delete(c.Request.Context(), transfer.AreaBooks, res.Path)
		response.HandleError(c, err, errorMap...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"upload": res, "book": book})
}

// Progress - GET /api/v1/admin/uploads/:uploadID/progress
func (h *UploadHandler) Progress(c *gin.Context) {
	p, ok := h.progress.Get(c.Param("uploadID"))
	if !ok {
		response.NotFound(c, "unknown upload")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": p.Value(), "uploading": p.Uploading()})
}

func (h *UploadHandler) formFile(c *gin.Context) (transfer.File, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "multipart field \"file\" is required")
		return transfer.File{}, false
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "could not read upload")
		return transfer.File{}, false
	}
	return transfer.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, true
}

func (h *UploadHandler) fail(c *gin.Context, err error) {
	var ve *transfer.ValidationError
	if errors.As(err, &ve) {
		status, code := http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE"
		if ve.Reason == transfer.ReasonTooLarge {
			status, code = http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
		}
		response.ErrorResponse(c, status, code, ve.Description)
		return
	}
	response.HandleError(c, err, errorMap...)
}

func (h *UploadHandler) forget(uploadID string) {
	if uploadID == "" {
		return
	}
	time.AfterFunc(forgetAfter, func() { h.progress.Forget(uploadID) })
}

func closeBody(f transfer.File) {
	if closer, ok := f.Body.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
