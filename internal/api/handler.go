package api

import (
	"github.com/gin-gonic/gin"

	"vinaudit/internal/config"
	"vinaudit/internal/importer"
	"vinaudit/internal/store"
	"vinaudit/pkg/logger"
)

// ServiceName 服务名
const ServiceName = "vinaudit"

// Handler API 处理器
type Handler struct {
	store       *store.Store
	coordinator *importer.Coordinator
	cfg         *config.AppConfig
	dataDir     string
	version     string
	downloads   *downloadStore
	logger      *logger.Logger
}

// Deps 处理器依赖
type Deps struct {
	Store       *store.Store
	Coordinator *importer.Coordinator
	Config      *config.AppConfig
	DataDir     string // 上传与导出文件的根目录（含 uploads/ exports/）
	Version     string
	Logger      *logger.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	return &Handler{
		store:       d.Store,
		coordinator: d.Coordinator,
		cfg:         d.Config,
		dataDir:     d.DataDir,
		version:     d.Version,
		downloads:   newDownloadStore(),
		logger:      d.Logger.Named("api"),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 批处理（SSE）
	router.POST("/process", h.Process)

	// 一次性下载
	router.GET("/download/:token", h.Download)

	// 运行历史
	router.GET("/runs", h.ListRuns)
}
