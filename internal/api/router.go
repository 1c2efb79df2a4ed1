package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/auth"
	"jobtrack/internal/config"
	"jobtrack/internal/database"
	"jobtrack/internal/metrics"
	"jobtrack/internal/ratelimit"
)

const healthCheckTimeout = 3 * time.Second

// Dependencies 汇总路由所需的共享组件。Limiter 为 nil 时不限流。
type Dependencies struct {
	UnitOfWork  *database.UnitOfWork
	AuthService *auth.AuthService
	Limiter     ratelimit.Limiter
	Logger      *slog.Logger
}

// NewRouter 构建 Gin 路由引擎：全局中间件、根路径、健康检查、指标与业务路由。
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(deps.Logger),
		middleware.RecoveryMiddleware(),
		metrics.GinMiddleware(),
		middleware.TrustedHostMiddleware(cfg.Security.AllowedHosts),
		cors.New(corsConfig(cfg.CORS)),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the " + cfg.API.ProjectName})
	})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := deps.UnitOfWork.Ping(ctx); err != nil {
			middleware.LoggerFromContext(c).Error("health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	RegisterRoutes(router.Group(cfg.API.Prefix), deps)

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowCredentials = true
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Correlation-ID")
	c.ExposeHeaders = []string{"X-Correlation-ID"}
	for _, origin := range cfg.Origins {
		if origin == "*" {
			c.AllowOriginFunc = func(string) bool { return true }
			return c
		}
	}
	c.AllowOrigins = cfg.Origins
	if len(c.AllowOrigins) == 0 {
		c.AllowOriginFunc = func(string) bool { return false }
	}
	return c
}
