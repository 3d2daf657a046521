package offline

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/shared/response"
)

// DeviceHeader identifies the browser installation asking about the prompt.
const DeviceHeader = "X-Device-ID"

type Handler struct {
	prompts *PromptPolicy
}

func NewHandler(prompts *PromptPolicy) *Handler {
	return &Handler{prompts: prompts}
}

func device(c *gin.Context) (string, bool) {
	id := c.GetHeader(DeviceHeader)
	if id == "" {
		response.BadRequest(c, DeviceHeader+" header is required")
		return "", false
	}
	return id, true
}

// InstallPrompt - GET /api/v1/pwa/install-prompt
func (h *Handler) InstallPrompt(c *gin.Context) {
	id, ok := device(c)
	if !ok {
		return
	}
	show, err := h.prompts.ShouldPrompt(c.Request.Context(), id)
	if err != nil {
		log.Warn().Err(err).Str("device", id).Msg("install prompt lookup failed")
	}
	response.Success(c, http.StatusOK, gin.H{"show": show})
}

// DismissInstallPrompt - POST /api/v1/pwa/install-prompt/dismiss
func (h *Handler) DismissInstallPrompt(c *gin.Context) {
	id, ok := device(c)
	if !ok {
		return
	}
	if err := h.prompts.Dismiss(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewPush - POST /api/v1/pwa/push/preview?action=
// Renders the notification a payload would produce and the click outcome.
func (h *Handler) PreviewPush(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "could not read body")
		return
	}
	n, err := DecodePush(body)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"notification": n,
		"click":        Click(n, c.Query("action")),
	})
}
