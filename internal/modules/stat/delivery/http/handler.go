package http

import (
	"net/http"
	"strconv"

	statService "anoa.com/devsearch/internal/modules/stat/service"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetStats(c *gin.Context) {
	limit := statService.DefaultTopLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	res, err := h.statService.GetStats(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
