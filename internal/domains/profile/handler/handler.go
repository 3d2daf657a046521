package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"karwan-auliya/internal/domains/profile/model"
	"karwan-auliya/internal/domains/profile/service"
	"karwan-auliya/internal/shared/response"
)

type ProfileHandler struct {
	service *service.Service
}

func NewProfileHandler(svc *service.Service) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Me - GET /api/v1/me/profile
func (h *ProfileHandler) Me(c *gin.Context) {
	p, err := h.service.Me(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UpdateMe - PATCH /api/v1/me/profile
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req model.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.service.UpdateMe(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err, response.ErrorMapping{
			Err: model.ErrNothingToUpdate, Status: http.StatusBadRequest, Code: "NOTHING_TO_UPDATE",
		})
		return
	}
	response.Success(c, http.StatusOK, p)
}
