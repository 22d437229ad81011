package entrypoint

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paasops/authgate/internal/audit"
	"github.com/paasops/authgate/internal/auth"
	"github.com/paasops/authgate/internal/config"
	"github.com/paasops/authgate/internal/database"
	auditrepo "github.com/paasops/authgate/internal/database/audit"
	httpcontrollers "github.com/paasops/authgate/internal/http"
	"github.com/paasops/authgate/internal/oauth2"
	"github.com/paasops/authgate/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Run wires the gateway and serves until interrupted.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting authgate v%s", version)

	methods := auth.DetectMethods(cfg)
	if methods.Enabled() {
		log.Printf("Authentication enabled, active methods: %s", strings.Join(methods.Active(), ", "))
	} else {
		log.Printf("WARNING: no authentication method configured, all requests will be allowed")
	}
	if methods.Local && cfg.Auth.SessionKey == "" {
		log.Printf("WARNING: AUTH_SESSION_KEY is not set; local users with hashed passwords cannot log in")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// The store degrades to empty on malformed input; startup continues.
	store, err := auth.NewCredentialStore(cfg.Auth.Users, cfg.Auth.SessionKey)
	if err != nil {
		log.Printf("WARNING: %v; local authentication is effectively disabled", err)
	} else if methods.Local {
		log.Printf("Loaded %d local users", store.Len())
	}

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to access session database: %v", err)
	}
	sessions, err := auth.NewSessionManager(sqlDB, store, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	engine := auth.NewEngine(store, auth.NewOrgChecker(), cfg.GitHub.Org)
	middleware := auth.NewMiddleware(methods, sessions, engine, auditService)

	var github, generic oauth2.Provider
	if methods.GitHub {
		github = oauth2.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
	}
	if methods.OAuth2 {
		generic = oauth2.NewGenericProvider(cfg.OAuth2)
	}

	authController := auth.NewAuthController(methods, engine, sessions, github, generic, auditService)

	addonsController, err := httpcontrollers.NewAddonsController()
	if err != nil {
		log.Fatalf("Failed to load addon templates: %v", err)
	}

	// CSRF only makes sense once there is a cookie-backed login to forge.
	var csrfSecret []byte
	if methods.Enabled() && cfg.Auth.SessionKey != "" {
		sum := sha256.Sum256([]byte(cfg.Auth.SessionKey))
		csrfSecret = sum[:]
	}

	router := httpcontrollers.NewRouter(httpcontrollers.RouterConfig{
		AuthController: authController,
		AuthMiddleware: middleware,
		SessionManager: sessions,
		Store:          store,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Health:         httpcontrollers.NewHealthController(db, version),
		Addons:         addonsController,
		Audit:          httpcontrollers.NewAuditController(auditrepo.NewRepository(db.DB)),
	})

	pruner := scheduler.NewAuditPruneScheduler(auditrepo.NewRepository(db.DB), cfg.Audit)
	if err := pruner.Start(); err != nil {
		log.Printf("WARNING: audit prune scheduler did not start: %v", err)
	}

	Serve(router, cfg, func(ctx context.Context) {
		pruner.Stop()
	})
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}
