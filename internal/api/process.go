package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vinaudit/internal/fleet"
	"vinaudit/internal/importer"
	"vinaudit/internal/model"
	"vinaudit/pkg/logger"
)

// processDone done 事件的数据
type processDone struct {
	RunID    string             `json:"runId,omitempty"`
	Summary  model.FleetSummary `json:"summary"`
	Text     fleet.Text         `json:"text"`
	AuditURL string             `json:"auditUrl"`
	ValidURL string             `json:"validUrl"`
	Totals   importer.Totals    `json:"totals"`
}

// Process 上传车辆清单并处理（SSE 流式响应）
// POST /api/process
func (h *Handler) Process(c *gin.Context) {
	if h.coordinator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "处理服务未就绪"})
		return
	}

	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	filename := filepath.Base(uploadedFile.Filename)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 .xlsx / .xlsm / .csv 文件"})
		return
	}

	jobID := uuid.NewString()
	uploadPath := filepath.Join(h.dataDir, "uploads", jobID+filepath.Ext(filename))
	outputDir := filepath.Join(h.dataDir, "exports", jobID)

	if err := c.SaveUploadedFile(uploadedFile, uploadPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	// 清理上传文件
	defer os.Remove(uploadPath)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event importer.ProgressEvent) {
		eventData, err := json.Marshal(event)
		if err != nil {
			h.logger.Warn("marshal event failed", logger.Error(err))
			return
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}

	progressChan := h.coordinator.Process(c.Request.Context(), importer.RunOptions{
		FilePath:  uploadPath,
		Filename:  filename,
		OutputDir: outputDir,
	})

	published := false
	for event := range progressChan {
		if event.Type == "done" {
			result, ok := event.Data.(*importer.RunResult)
			if !ok || c.Request.Context().Err() != nil {
				// 客户端已断开，不签发下载链接
				continue
			}
			event.Data = h.publish(c, result)
			published = true
		}
		send(event)
	}

	// 失败或客户端断开时不保留任何输出
	if !published {
		_ = os.RemoveAll(outputDir)
	}
}

// publish 为两个输出文件签发一次性下载链接
func (h *Handler) publish(c *gin.Context, result *importer.RunResult) processDone {
	prefix := "/api"
	if i := strings.Index(c.Request.URL.Path, "/process"); i > 0 {
		prefix = c.Request.URL.Path[:i]
	}

	auditToken := h.downloads.put(result.AuditPath, filepath.Base(result.AuditPath), downloadTTL)
	validToken := h.downloads.put(result.ValidPath, filepath.Base(result.ValidPath), downloadTTL)

	h.logger.Info("run published",
		logger.String("run_id", result.RunID),
		logger.Duration("ttl", downloadTTL),
		logger.Int("records", result.Totals.Records),
	)

	return processDone{
		RunID:    result.RunID,
		Summary:  result.Summary,
		Text:     result.Text,
		AuditURL: fmt.Sprintf("%s/download/%s", prefix, auditToken),
		ValidURL: fmt.Sprintf("%s/download/%s", prefix, validToken),
		Totals:   result.Totals,
	}
}
