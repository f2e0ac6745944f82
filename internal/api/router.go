package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ocerny17-lgtm/kavarna/config"
	_ "github.com/ocerny17-lgtm/kavarna/docs"
	"github.com/ocerny17-lgtm/kavarna/internal/api/handler"
	"github.com/ocerny17-lgtm/kavarna/internal/api/middleware"
	"github.com/ocerny17-lgtm/kavarna/internal/metrics"
	"github.com/ocerny17-lgtm/kavarna/internal/service"
)

// NewRouter 组装路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler, auth service.AuthService, m *metrics.Registry) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Telemetry.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	r.Use(middleware.SessionIdentity(auth, cfg.Auth.SessionCookie))

	limited := middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/orders", h.ListOrders)
		v1.POST("/orders", limited, h.CreateOrder)
		v1.POST("/orders/:id/claim", limited, h.ClaimOrder)
		v1.POST("/orders/:id/deliver", limited, h.DeliverOrder)

		v1.POST("/auth/login", limited, h.Login)
		v1.POST("/auth/logout", h.Logout)
		v1.GET("/auth/me", h.Me)
	}

	// 旧版文件端点：自己分派 method，未支持的方法回 405
	r.Any("/api/legacy/orders", h.LegacyOrders)

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
