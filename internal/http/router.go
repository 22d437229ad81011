package http

import (
	"github.com/gin-gonic/gin"

	"github.com/paasops/authgate/internal/auth"
)

// RouterConfig carries the router's dependencies.
type RouterConfig struct {
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	Store          *auth.CredentialStore
	CSRFSecret     []byte
	SecureCookies  bool
	Health         *HealthController
	Addons         *AddonsController
	Audit          *AuditController
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.Store))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Public surface: health, login/logout and the OAuth dance.
	router.GET("/health", cfg.Health.Status)
	cfg.AuthController.RegisterRoutes(router)

	// Session-gated surface for browser callers.
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.Handler())
	{
		api.GET("/me", Me)
		api.GET("/addons", cfg.Addons.List)
		if cfg.Audit != nil {
			api.GET("/audit", cfg.Audit.List)
		}
	}

	// Token-gated surface for CLI/API callers: independent of sessions.
	cli := router.Group("/api/cli")
	cli.Use(cfg.AuthMiddleware.Bearer())
	{
		cli.GET("/me", Me)
		cli.GET("/addons", cfg.Addons.List)
	}

	return router
}

// Me reports the verified identity the gate resolved for this request.
func Me(c *gin.Context) {
	c.JSON(200, gin.H{"user": auth.GetIdentity(c)})
}
