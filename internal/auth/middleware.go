package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paasops/authgate/internal/audit"
	"github.com/paasops/authgate/internal/entities"
)

// ContextKeyIdentity is the Gin context key holding the caller identity.
const ContextKeyIdentity = "auth_identity"

// UnauthenticatedBody is the response body sent with every 401 from the
// gate. Rejection reasons stay in the logs; callers all see the same text.
const UnauthenticatedBody = "You are not authenticated"

// Middleware is the request-facing access gate. It decides pass or reject
// per request based on the restored session, and degrades to always-allow
// when no authentication method is configured.
type Middleware struct {
	methods  Methods
	sessions *SessionManager
	engine   *Engine
	audit    *audit.Service
}

// NewMiddleware creates the access gate. The audit service may be nil.
func NewMiddleware(methods Methods, sessions *SessionManager, engine *Engine, auditSvc *audit.Service) *Middleware {
	return &Middleware{
		methods:  methods,
		sessions: sessions,
		engine:   engine,
		audit:    auditSvc,
	}
}

// Handler returns the session gate. With no active methods it is an
// explicit bypass, not a degraded error state: every request passes and
// handlers see the anonymous identity.
func (m *Middleware) Handler() gin.HandlerFunc {
	if !m.methods.Enabled() {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.sessions.RestoreIdentity(c.Request)
		if !ok {
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			c.Abort()
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// Bearer returns the token gate for API-style calls. It is an independent
// pass/reject decision: session state is never consulted and no session is
// established on success. Only meaningful while the local method is active.
func (m *Middleware) Bearer() gin.HandlerFunc {
	if !m.methods.Enabled() {
		return m.noAuthHandler()
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			c.Abort()
			return
		}

		identity, err := m.engine.VerifyBearer(token)
		if err != nil {
			m.audit.BearerRejected(c.ClientIP())
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			c.Abort()
			return
		}

		m.audit.BearerAccepted(identity.Username, c.ClientIP())
		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// GetIdentity retrieves the caller identity from the Gin context. Returns
// the anonymous identity when no verification has occurred.
func GetIdentity(c *gin.Context) entities.Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(entities.Identity); ok {
			return identity
		}
	}
	return entities.Anonymous()
}

// IsAuthenticated reports whether the request resolved to a real identity.
func IsAuthenticated(c *gin.Context) bool {
	return !GetIdentity(c).IsAnonymous()
}
