package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vinaudit/internal/model"
)

const maxRunsLimit = 200

type listRunsResponse struct {
	Items []*model.Run `json:"items"`
	Total int          `json:"total"`
}

// ListRuns 最近的运行记录
// GET /api/runs?limit=N
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, listRunsResponse{Items: []*model.Run{}})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit 必须为正整数"})
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取运行记录失败"})
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}

	total, err := h.store.CountRuns()
	if err != nil {
		total = len(runs)
	}

	c.JSON(http.StatusOK, listRunsResponse{Items: runs, Total: total})
}
