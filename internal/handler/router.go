package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/config"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/handler/middleware"
	jwtpkg "github.com/MAVERICK-VF142/Drx.MediMate/pkg/jwt"
)

// Handlers groups the route handlers. A nil handler leaves its routes
// unmounted.
type Handlers struct {
	Assistant  *AssistantHandler
	Invitation *InvitationHandler
	Admin      *AdminHandler
	// Metrics serves cfg.Metrics.Path when metrics are enabled.
	Metrics http.Handler
}

func SetupRouter(cfg *config.Config, logger *zap.Logger, jwtManager *jwtpkg.Manager, h Handlers) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled && h.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(h.Metrics))
	}

	api := r.Group("/api/v1")

	if h.Assistant != nil {
		ai := api.Group("")
		if cfg.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.Burst)
			ai.Use(middleware.RateLimit(limiter))
		}
		ai.POST("/drug-info", h.Assistant.DrugInfo)
		ai.POST("/symptom-checker", h.Assistant.SymptomCheck)
		ai.POST("/image-analysis", h.Assistant.ImageAnalysis)
	}

	if h.Invitation != nil {
		api.POST("/invitations/verify", h.Invitation.Verify)
	}

	// Admin routes (JWT + admin check)
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(jwtManager))
		admin.Use(middleware.AdminAuth(cfg.Admin.UserIDs))
		{
			admin.POST("/invitations", h.Admin.CreateInvitation)
			admin.GET("/invitations", h.Admin.ListInvitations)
		}
	}

	return r
}
