package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sykell/herd-inventory/internal/config"
	"github.com/sykell/herd-inventory/internal/middleware"
)

// NewRouter wires the dashboard routes. When login is configured, the
// dashboard and API require a token from POST /auth/login.
func NewRouter(cfg *config.Config, svc Snapshotter) *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigin))
	r.SetHTMLTemplate(DashboardTemplate(cfg.PhpMyAdminURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "herd-inventory",
		})
	})

	protected := r.Group("/")
	if cfg.Auth.Enabled() {
		r.POST("/auth/login", LoginHandler(cfg.Auth))
		protected.Use(middleware.JWTRequired(cfg.Auth.JWTSecret))
	}
	{
		protected.GET("/", DashboardHandler(cfg.AppName, cfg.PhpMyAdminURL, svc))
		protected.GET("/api/inventory", InventoryHandler(svc))
		protected.GET("/api/projects", ProjectsHandler(svc))
		protected.GET("/api/projects/:name", ProjectHandler(svc))
		protected.GET("/api/databases", DatabasesHandler(svc))
	}

	return r
}
