package api

import (
	"net/http"
	"strings"
	"time"

	"fridge-chef/internal/api/handlers/health"
	recipeHandler "fridge-chef/internal/api/handlers/recipe"
	"fridge-chef/internal/api/middleware"
	"fridge-chef/internal/app"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 預設請求體大小限制 (1MB)
const defaultMaxBodySize = 1 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, a *app.App) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	allowOrigins := cfg.Server.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, a.Readiness)
	if a.Jobs != nil {
		healthHandler.WithQueue(a.Jobs.Status)
	}
	if a.AI != nil {
		healthHandler.WithCache(a.AI.CacheStats)
	}
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// 產出檔案（本機儲存）
	publicBase := strings.TrimSuffix(cfg.Storage.PublicBase, "/")
	if cfg.Storage.Driver == "local" && strings.HasPrefix(publicBase, "/") {
		router.Static(publicBase, cfg.Storage.OutputDir)
	}

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		h := recipeHandler.NewHandler(a.Orchestrator, a.Jobs)

		api.GET("/options", h.HandleOptions)

		// 同步生成，套用請求逾時
		api.POST("/recipes/generate", middleware.Timeout(cfg.Server.RequestTimeout), h.HandleGenerate)

		jobs := api.Group("/jobs")
		{
			jobs.POST("", h.HandleCreateJob)
			jobs.GET("/:id", h.HandleGetJob)
			jobs.GET("/:id/events", h.HandleJobEvents)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrNotFound.Response(false))
	})

	common.LogInfo("Router setup completed successfully",
		zap.String("version", cfg.App.Version),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBodySize),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return router, nil
}
