package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sitepulse/api/middleware"
	"sitepulse/api/utils"
)

// TrackPath is the public ingestion route.
const TrackPath = "/api/track"

type RouterConfig struct {
	Tracking        *TrackingHandlers
	Auth            *AuthHandlers
	Tokens          *utils.TokenIssuer
	Limiter         *middleware.IPRateLimiter
	DashboardAPIKey string
	FrontendOrigin  string
	Log             *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware(cfg.FrontendOrigin, TrackPath))

	r.GET("/health", cfg.Tracking.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Marketing pages are unauthenticated, so ingestion is too.
	r.POST(TrackPath, middleware.RateLimit(cfg.Limiter), cfg.Tracking.TrackEvent)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", cfg.Auth.Login)
			authGroup.POST("/logout", cfg.Auth.Logout)
		}

		trackingGroup := api.Group("/tracking")
		trackingGroup.Use(middleware.AuthRequired(cfg.Tokens, cfg.DashboardAPIKey, cfg.Log))
		{
			trackingGroup.GET("/summary", cfg.Tracking.GetSummary)
		}
	}

	return r
}
