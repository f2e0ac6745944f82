package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ocerny17-lgtm/kavarna/internal/service"
	"github.com/ocerny17-lgtm/kavarna/pkg/logger"
	"github.com/ocerny17-lgtm/kavarna/pkg/response"
)

const identityKey = "barista"

// RequestID 给每个请求挂一个 request id，响应头透出
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// AccessLog 结构化访问日志
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// RateLimit 全局令牌桶限流（只挂在写接口上）
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 { rps = 20 }
	if burst <= 0 { burst = 40 }
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(429, response.Response{Code: 429, Message: "too many requests"})
			return
		}
		c.Next()
	}
}

// SessionIdentity 从会话 cookie 解析 barista 身份放进上下文。
// 没有 cookie 或令牌无效都按匿名顾客处理，不拦截请求。
func SessionIdentity(auth service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if name, err := auth.Identity(token); err == nil {
				c.Set(identityKey, name)
			}
		}
		c.Next()
	}
}

// Identity 返回当前请求绑定的 barista 身份，匿名时为空串
func Identity(c *gin.Context) string {
	return c.GetString(identityKey)
}
