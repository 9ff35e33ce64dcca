package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"fridge-chef/internal/core/job"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *job.QueueStatus       `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// ReadinessFunc 回傳各元件狀態與是否就緒
type ReadinessFunc func(ctx context.Context) (map[string]string, bool)

// QueueStatusFunc 回傳隊列狀態
type QueueStatusFunc func() job.QueueStatus

// CacheStatsFunc 回傳快取統計，未啟用時為 nil
type CacheStatsFunc func() map[string]interface{}

// Handler 健康檢查處理器
type Handler struct {
	version   string
	readiness ReadinessFunc
	queue     QueueStatusFunc
	cache     CacheStatsFunc
}

// NewHandler readiness 可為 nil
func NewHandler(version string, readiness ReadinessFunc) *Handler {
	return &Handler{version: version, readiness: readiness}
}

// WithQueue 在 /health 附上隊列狀態
func (h *Handler) WithQueue(fn QueueStatusFunc) *Handler {
	h.queue = fn
	return h
}

// WithCache 在 /health 附上快取統計
func (h *Handler) WithCache(fn CacheStatsFunc) *Handler {
	h.cache = fn
	return h
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		status := h.queue()
		response.Queue = &status
	}
	if h.cache != nil {
		response.Cache = h.cache()
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：completion、快取、PDF 與圖片服務
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.readiness == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	checks, ready := h.readiness(c.Request.Context())
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
