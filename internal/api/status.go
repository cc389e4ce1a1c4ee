package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vinaudit/internal/store"
	"vinaudit/pkg/logger"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	LookupBaseURL string            `json:"lookupBaseUrl"`
	RunCount      int               `json:"runCount"`
	LastRunID     string            `json:"lastRunId,omitempty"`
	State         map[string]string `json:"state,omitempty"` // 存储中的键值状态
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Service:       ServiceName,
		Version:       h.version,
		LookupBaseURL: h.cfg.Lookup.BaseURL,
	}

	if h.store != nil {
		if n, err := h.store.CountRuns(); err == nil {
			resp.RunCount = n
		} else {
			h.logger.Warn("count runs failed", logger.Error(err))
		}
		if state, err := h.store.GetAllConfig(); err == nil {
			resp.State = state
			resp.LastRunID = state[store.KeyLastRunID]
		} else {
			h.logger.Warn("read store state failed", logger.Error(err))
		}
	}

	c.JSON(http.StatusOK, resp)
}
