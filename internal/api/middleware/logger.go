package middleware

import (
	"net/http"
	"time"

	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handler 寫入 gin.Context 的識別碼，存取日誌會一併記錄
const (
	ContextRunID = "run_id"
	ContextJobID = "job_id"
)

// Logger 日誌中間件，記錄每個請求的結果與所屬的 run / job
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := append(requestFields(c),
			zap.Int("status", status),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
		)
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			common.LogError("伺服器錯誤", fields...)
		case status >= http.StatusBadRequest:
			common.LogWarn("用戶端錯誤", fields...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// requestFields 請求識別欄位，run_id / job_id 只在 handler 設置時出現
func requestFields(c *gin.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", requestid.Get(c)),
		zap.String("method", c.Request.Method),
		zap.String("ip", c.ClientIP()),
	}
	if runID := c.GetString(ContextRunID); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if jobID := c.GetString(ContextJobID); jobID != "" {
		fields = append(fields, zap.String("job_id", jobID))
	}
	return fields
}

// Recovery 恢復中間件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					append(requestFields(c),
						zap.Any("error", err),
						zap.String("path", c.Request.URL.Path),
					)...,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrInternalError.Response(false))
			}
		}()

		c.Next()
	}
}
