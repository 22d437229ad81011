package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/paasops/authgate/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// gateRouter stands up a minimal router with the session middleware and the
// gate in front of a probe endpoint reporting the resolved identity.
func gateRouter(t *testing.T, methods Methods, sm *SessionManager, engine *Engine) *gin.Engine {
	t.Helper()
	router := gin.New()
	if sm != nil {
		router.Use(sm.SessionLoadSave())
	}

	mw := NewMiddleware(methods, sm, engine, nil)
	router.GET("/api/me", mw.Handler(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetIdentity(c)})
	})
	router.GET("/api/cli/me", mw.Bearer(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetIdentity(c)})
	})
	return router
}

func TestMiddleware_NoMethodsAllowsEverything(t *testing.T) {
	router := gateRouter(t, Methods{}, nil, nil)

	for _, path := range []string{"/api/me", "/api/cli/me"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200 with no methods configured, got %d", path, w.Code)
		}
	}
}

func TestMiddleware_RejectsWithoutSession(t *testing.T) {
	store := testStore(t, "")
	sm := testSessionManager(t, store)
	router := gateRouter(t, Methods{Local: true}, sm, NewEngine(store, nil, ""))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if body := w.Body.String(); body != UnauthenticatedBody {
		t.Errorf("expected body %q, got %q", UnauthenticatedBody, body)
	}
}

func TestMiddleware_PassesWithSessionCookie(t *testing.T) {
	store := testStore(t, "")
	sm := testSessionManager(t, store)
	engine := NewEngine(store, nil, "")
	router := gateRouter(t, Methods{Local: true}, sm, engine)
	router.POST("/login", func(c *gin.Context) {
		identity, err := engine.VerifyLocal(c.PostForm("username"), c.PostForm("password"))
		if err != nil {
			c.String(http.StatusUnauthorized, UnauthenticatedBody)
			return
		}
		if err := sm.PersistIdentity(c.Request, identity); err != nil {
			c.String(http.StatusInternalServerError, "session error")
			return
		}
		c.Status(http.StatusOK)
	})

	form := url.Values{"username": {"admin"}, "password": {"p1"}}
	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	login.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, login)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed with %d", loginRec.Code)
	}

	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie after login")
	}

	probe := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, cookie := range cookies {
		probe.AddCookie(cookie)
	}
	probeRec := httptest.NewRecorder()
	router.ServeHTTP(probeRec, probe)

	if probeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a session cookie, got %d", probeRec.Code)
	}
}

func TestBearer_AcceptsKnownToken(t *testing.T) {
	store := testStore(t, "")
	sm := testSessionManager(t, store)
	router := gateRouter(t, Methods{Local: true}, sm, NewEngine(store, nil, ""))

	r := httptest.NewRequest(http.MethodGet, "/api/cli/me", nil)
	r.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a known token, got %d", w.Code)
	}
}

func TestBearer_RejectsUnknownOrMissingToken(t *testing.T) {
	store := testStore(t, "")
	sm := testSessionManager(t, store)
	router := gateRouter(t, Methods{Local: true}, sm, NewEngine(store, nil, ""))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"unknown token", "Bearer tok-unknown"},
		{"bare token", "tok-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/cli/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if body := w.Body.String(); body != UnauthenticatedBody {
				t.Errorf("expected body %q, got %q", UnauthenticatedBody, body)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}

func TestGetIdentity_DefaultsToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	identity := GetIdentity(c)
	if !identity.IsAnonymous() {
		t.Errorf("expected anonymous identity, got %+v", identity)
	}
	if identity.ID != 0 || identity.Method != "" || identity.Username != "anonymous" {
		t.Errorf("unexpected anonymous shape: %+v", identity)
	}
	if IsAuthenticated(c) {
		t.Error("expected IsAuthenticated to report false")
	}
}

func TestGetIdentity_ReturnsStoredIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeyIdentity, entities.Identity{ID: 1, Method: entities.MethodLocal, Username: "admin"})

	identity := GetIdentity(c)
	if identity.Username != "admin" {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if !IsAuthenticated(c) {
		t.Error("expected IsAuthenticated to report true")
	}
}
