package handler

import (
	"fmt"
	"net/http"

	"anoa.com/devsearch/internal/modules/search/dto"
	search "anoa.com/devsearch/internal/modules/search/service"
	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchService
}

// NewSearchHandler accepts a nil service when no search backend is configured.
func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c *gin.Context) {
	if h.service == nil {
		response.ResponseError(c, fmt.Errorf("search is not configured: %w", apperror.ErrUnavailable))
		return
	}

	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), query.Index, query.Q, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
