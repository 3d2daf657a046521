package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"karwan-auliya/internal/domains/search/model"
	"karwan-auliya/internal/domains/search/service"
	"karwan-auliya/internal/shared/response"
)

type SearchHandler struct {
	service *service.Service
}

func NewSearchHandler(svc *service.Service) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Search - GET /api/v1/search?q=&category_id=&min_rating=&year_from=&year_to=&sort_by=
// A query shorter than two characters answers an empty list.
func (h *SearchHandler) Search(c *gin.Context) {
	var f model.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	results, err := h.service.Search(c.Request.Context(), c.Query("q"), f).Unwrap()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	response.Success(c, http.StatusOK, results)
}

// Suggestions - GET /api/v1/search/suggestions?q=
func (h *SearchHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.service.Suggestions(c.Request.Context(), c.Query("q")).Unwrap()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	response.Success(c, http.StatusOK, suggestions)
}

// Popular - GET /api/v1/search/popular
func (h *SearchHandler) Popular(c *gin.Context) {
	terms, err := h.service.PopularSearches(c.Request.Context()).Unwrap()
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, terms)
}
