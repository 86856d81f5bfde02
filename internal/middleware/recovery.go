package middleware

import (
	"fmt"

	"github.com/haierkeys/git-light-sync/pkg/app"
	"github.com/haierkeys/git-light-sync/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
// panic 被记录后返回统一的 500 响应
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			var errorMsg string
			switch v := r.(type) {
			case error:
				errorMsg = v.Error()
			case string:
				errorMsg = v
			default:
				errorMsg = fmt.Sprintf("%v", v)
			}

			logger.Error("Recovered from panic",
				zap.String("router", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", c.ClientIP()),
				zap.String("trace-id", c.GetString(TraceIDKey)),
				zap.String("panic", errorMsg),
				zap.Stack("stack"),
			)

			app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
			c.Abort()
		}()

		c.Next()
	}
}
