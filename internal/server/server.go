package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"vinaudit/internal/api"
	"vinaudit/internal/config"
	"vinaudit/internal/exporter"
	"vinaudit/internal/importer"
	"vinaudit/internal/nhtsa"
	"vinaudit/internal/parser"
	"vinaudit/internal/store"
	"vinaudit/pkg/logger"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	http   *http.Server
	logger *logger.Logger
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, version string, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据目录与 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "vinaudit.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client := nhtsa.NewClient(nhtsa.Options{
		BaseURL:            cfg.Lookup.BaseURL,
		Timeout:            cfg.Lookup.Timeout(),
		InsecureSkipVerify: cfg.Lookup.InsecureSkipVerify,
		UserAgent:          cfg.Lookup.UserAgent,
	}, log)

	coordinator := importer.NewCoordinator(importer.Options{
		Store:  sqliteStore,
		Lookup: client,
		Parser: parser.Options{
			SheetName: cfg.Input.SheetName,
			HeaderRow: cfg.Input.HeaderRow,
		},
		Export: exporter.Options{
			Country:     cfg.Export.Country,
			ValidFormat: cfg.Export.ValidFormat,
		},
		Concurrency: cfg.Lookup.Concurrency,
		Logger:      log,
	})

	handler := api.NewHandler(api.Deps{
		Store:       sqliteStore,
		Coordinator: coordinator,
		Config:      cfg,
		DataDir:     dataDir,
		Version:     version,
		Logger:      log,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	if devMode {
		router.Use(gin.Logger())
	}

	s := &Server{
		router: router,
		store:  sqliteStore,
		api:    handler,
		logger: log.Named("server"),
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，ctx 取消后优雅退出
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logger.String("addr", addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close 关闭存储
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
