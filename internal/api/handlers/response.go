package handlers

import (
	"context"
	"errors"

	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AsCustomError 將任意錯誤轉為 CustomError
func AsCustomError(err error) *common.CustomError {
	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
		return ce
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	case errors.Is(err, context.Canceled):
		return common.ErrRequestTimeout.Wrap(err)
	default:
		return common.ErrInternalError.Wrap(err)
	}
}

// Error 回傳錯誤響應，debug 模式附上原始錯誤
func Error(c *gin.Context, err error) {
	ce := AsCustomError(err)
	if ce.Status >= 500 {
		common.LogError("請求處理失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(gin.IsDebugging()))
}
