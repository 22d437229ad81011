package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paasops/authgate/internal/audit"
	"github.com/paasops/authgate/internal/entities"
	"github.com/paasops/authgate/internal/oauth2"
)

// sessionKeyOAuthState holds the anti-forgery nonce between the redirect
// and the callback.
const sessionKeyOAuthState = "oauth_state"

// AuthController handles the authentication endpoints: local login and
// logout, the OAuth redirect/callback pairs, and the current-session probe.
type AuthController struct {
	methods  Methods
	engine   *Engine
	sessions *SessionManager
	github   oauth2.Provider
	generic  oauth2.Provider
	audit    *audit.Service
}

// NewAuthController creates the controller. Providers for inactive methods
// may be nil; their routes are simply not registered.
func NewAuthController(methods Methods, engine *Engine, sessions *SessionManager, github, generic oauth2.Provider, auditSvc *audit.Service) *AuthController {
	return &AuthController{
		methods:  methods,
		engine:   engine,
		sessions: sessions,
		github:   github,
		generic:  generic,
		audit:    auditSvc,
	}
}

// RegisterRoutes registers the endpoints for every active method.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/session", ac.Session)

	if ac.methods.Local {
		router.POST("/login", ac.Login)
	}
	if ac.methods.Enabled() {
		router.GET("/logout", ac.Logout)
		router.POST("/logout", ac.Logout)
	}
	if ac.methods.GitHub && ac.github != nil {
		router.GET("/auth/github", ac.oauthRedirect(ac.github))
		router.GET("/auth/github/callback", ac.oauthCallback(ac.github, ac.verifyGitHub))
	}
	if ac.methods.OAuth2 && ac.generic != nil {
		router.GET("/auth/oauth2", ac.oauthRedirect(ac.generic))
		router.GET("/auth/oauth2/callback", ac.oauthCallback(ac.generic, ac.verifyOAuth2))
	}
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Login handles the local username/password submission, from a form or a
// JSON body. The response never says which part of the credential was
// wrong.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	identity, err := ac.engine.VerifyLocal(req.Username, req.Password)
	if err != nil {
		ac.audit.LoginFailure(entities.MethodLocal, req.Username, c.ClientIP(), err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrBadCredentials.Error()})
		return
	}

	if err := ac.sessions.PersistIdentity(c.Request, identity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	ac.audit.LoginSuccess(entities.MethodLocal, identity.Username, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if identity, ok := ac.sessions.RestoreIdentity(c.Request); ok {
		ac.audit.Logout(identity, c.ClientIP())
	}
	_ = ac.sessions.DestroySession(c.Request)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Session reports the current caller identity, anonymous when no session
// restores. It sits outside the gate so UIs can probe before logging in,
// and it hands out the CSRF token the login and logout posts must echo.
func (ac *AuthController) Session(c *gin.Context) {
	if token := GetCSRFToken(c); token != "" {
		c.Header(CSRFTokenHeader, token)
	}

	identity := entities.Anonymous()
	if ac.methods.Enabled() {
		if restored, ok := ac.sessions.RestoreIdentity(c.Request); ok {
			identity = restored
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": identity, "authentication": ac.methods.Enabled()})
}

// oauthRedirect sends the caller to the provider's authorization page with
// a fresh state nonce bound to their session.
func (ac *AuthController) oauthRedirect(provider oauth2.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := uuid.NewString()
		ac.sessions.Put(c.Request.Context(), sessionKeyOAuthState, state)
		c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
	}
}

// verifier completes a provider-specific verification from a fetched
// profile.
type verifier func(c *gin.Context, profile *oauth2.Profile) (entities.Identity, error)

func (ac *AuthController) verifyGitHub(c *gin.Context, profile *oauth2.Profile) (entities.Identity, error) {
	return ac.engine.VerifyGitHub(c.Request.Context(), profile)
}

func (ac *AuthController) verifyOAuth2(_ *gin.Context, profile *oauth2.Profile) (entities.Identity, error) {
	return ac.engine.VerifyOAuth2(profile)
}

// oauthCallback completes the code exchange, fetches the profile, runs the
// strategy verifier and persists the identity. Any failure ends as 401;
// the reasons go to the audit log.
func (ac *AuthController) oauthCallback(provider oauth2.Provider, verify verifier) gin.HandlerFunc {
	method := entities.MethodOAuth2
	if provider.Name() == "github" {
		method = entities.MethodGitHub
	}

	return func(c *gin.Context) {
		expected := ac.sessions.PopString(c.Request.Context(), sessionKeyOAuthState)
		if expected == "" || c.Query("state") != expected {
			log.Printf("%s callback rejected: %v", provider.Name(), oauth2.ErrStateMismatch)
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			return
		}

		code := c.Query("code")
		if code == "" {
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			return
		}

		token, err := provider.Exchange(c.Request.Context(), code)
		if err != nil {
			log.Printf("%s code exchange failed: %v", provider.Name(), err)
			ac.audit.LoginFailure(method, "", c.ClientIP(), err)
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			return
		}

		profile, err := provider.FetchProfile(c.Request.Context(), token)
		if err != nil {
			log.Printf("%s profile fetch failed: %v", provider.Name(), err)
			ac.audit.LoginFailure(method, "", c.ClientIP(), err)
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			return
		}

		identity, err := verify(c, profile)
		if err != nil {
			if IsOrgDenied(err) {
				// Identity was proven; membership was not. Logged as an
				// authorization denial, not a failed login.
				ac.audit.AuthorizationDenied(method, profile.Username, c.ClientIP(), err)
			} else {
				ac.audit.LoginFailure(method, profile.Username, c.ClientIP(), err)
			}
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			return
		}

		if err := ac.sessions.PersistIdentity(c.Request, identity); err != nil {
			c.String(http.StatusInternalServerError, "failed to create session")
			return
		}

		ac.audit.LoginSuccess(method, identity.Username, c.ClientIP())
		c.Redirect(http.StatusFound, "/")
	}
}
