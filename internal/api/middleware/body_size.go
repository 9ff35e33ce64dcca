package middleware

import (
	"fmt"
	"net/http"

	"fridge-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BodySizeLimit 限制請求體大小。Content-Length 已超過時直接拒絕，
// 未宣告長度（chunked）時由 MaxBytesReader 在讀取時截斷
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	tooLarge := common.ErrorResponse{
		Code:    "REQUEST_TOO_LARGE",
		Message: fmt.Sprintf("請求體超過 %d bytes", maxSize),
	}

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			common.LogWarn("請求體過大",
				append(requestFields(c),
					zap.Int64("content_length", c.Request.ContentLength),
					zap.Int64("max_size", maxSize),
					zap.String("path", c.Request.URL.Path),
				)...,
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, tooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
