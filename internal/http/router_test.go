package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/paasops/authgate/internal/auth"
	"github.com/paasops/authgate/internal/config"
	dbaudit "github.com/paasops/authgate/internal/database/audit"
	"github.com/paasops/authgate/internal/entities"
)

func buildRouter(t *testing.T, csrfSecret []byte, auditController *AuditController) *gin.Engine {
	t.Helper()

	store, err := auth.NewCredentialStore(
		`[{"id": 1, "username": "admin", "password": "p1", "insecure": true, "apitoken": "tok-1"}]`, "")
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	sm, err := auth.NewSessionManager(nil, store, config.Auth{SessionLifetime: time.Hour})
	if err != nil {
		t.Fatalf("failed to build session manager: %v", err)
	}

	methods := auth.Methods{Local: true}
	engine := auth.NewEngine(store, nil, "")
	mw := auth.NewMiddleware(methods, sm, engine, nil)
	controller := auth.NewAuthController(methods, engine, sm, nil, nil, nil)

	addonsController, err := NewAddonsController()
	if err != nil {
		t.Fatalf("failed to load addons: %v", err)
	}

	return NewRouter(RouterConfig{
		AuthController: controller,
		AuthMiddleware: mw,
		SessionManager: sm,
		Store:          store,
		CSRFSecret:     csrfSecret,
		Health:         NewHealthController(nil, "test"),
		Addons:         addonsController,
		Audit:          auditController,
	})
}

func testRouter(t *testing.T) *gin.Engine {
	return buildRouter(t, nil, nil)
}

func postLoginForm(router *gin.Engine, username, password string, cookies []*http.Cookie, csrfToken string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if csrfToken != "" {
		r.Header.Set(auth.CSRFTokenHeader, csrfToken)
	}
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRouter_APIRequiresSession(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/api/me", "/api/addons"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
		if body := w.Body.String(); body != auth.UnauthenticatedBody {
			t.Errorf("%s: expected body %q, got %q", path, auth.UnauthenticatedBody, body)
		}
	}
}

func TestRouter_LoginThenAPI(t *testing.T) {
	router := testRouter(t)

	loginRec := postLoginForm(router, "admin", "p1", nil, "")
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", loginRec.Code, loginRec.Body.String())
	}

	probe := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, cookie := range loginRec.Result().Cookies() {
		probe.AddCookie(cookie)
	}
	probeRec := httptest.NewRecorder()
	router.ServeHTTP(probeRec, probe)

	if probeRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", probeRec.Code)
	}

	var resp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(probeRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.User.Username != "admin" {
		t.Errorf("expected admin, got %q", resp.User.Username)
	}
}

func TestRouter_CLIRequiresBearer(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cli/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/cli/addons", nil)
	r.Header.Set("Authorization", "Bearer tok-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with a valid token, got %d", w.Code)
	}

	var resp struct {
		Addons []struct {
			ID string `json:"id"`
		} `json:"addons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Addons) < 2 {
		t.Errorf("expected the embedded addon catalog, got %d entries", len(resp.Addons))
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

// csrfTestSecret matches the shape entrypoint derives from the session key.
var csrfTestSecret = []byte("01234567890123456789012345678901")

// fetchCSRFToken probes /api/session and returns the issued token with the
// cookies binding it.
func fetchCSRFToken(t *testing.T, router *gin.Engine) (string, []*http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("session probe failed with %d", w.Code)
	}
	token := w.Header().Get(auth.CSRFTokenHeader)
	if token == "" {
		t.Fatal("expected the session probe to hand out a CSRF token")
	}
	return token, w.Result().Cookies()
}

func TestRouter_CSRFTokenIssuedOnSessionProbe(t *testing.T) {
	router := buildRouter(t, csrfTestSecret, nil)
	fetchCSRFToken(t, router)
}

func TestRouter_CSRFLoginWithToken(t *testing.T) {
	router := buildRouter(t, csrfTestSecret, nil)

	token, cookies := fetchCSRFToken(t, router)
	w := postLoginForm(router, "admin", "p1", cookies, token)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a CSRF token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_CSRFLoginWithoutTokenRejected(t *testing.T) {
	router := buildRouter(t, csrfTestSecret, nil)

	w := postLoginForm(router, "admin", "p1", nil, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without a CSRF token, got %d", w.Code)
	}
	// The rejection must be the whole response: no login handler output,
	// no persisted identity.
	if body := w.Body.String(); body != `{"error":"CSRF token invalid or missing"}` {
		t.Errorf("unexpected body %q", body)
	}

	probe := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, cookie := range w.Result().Cookies() {
		probe.AddCookie(cookie)
	}
	probeRec := httptest.NewRecorder()
	router.ServeHTTP(probeRec, probe)
	if probeRec.Code != http.StatusUnauthorized {
		t.Errorf("expected no session from a rejected login, got %d", probeRec.Code)
	}
}

func TestRouter_AuditListing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.AuthEvent{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repo := dbaudit.NewRepository(db)
	for _, status := range []entities.AuthEventStatus{entities.AuthStatusSuccess, entities.AuthStatusFailed} {
		if err := repo.LogEvent(&entities.AuthEvent{
			EventType: entities.AuthEventLogin,
			Method:    "local",
			Username:  "admin",
			Status:    status,
		}); err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}

	router := buildRouter(t, nil, NewAuditController(repo))

	// The listing sits behind the session gate.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", w.Code)
	}

	login := postLoginForm(router, "admin", "p1", nil, "")
	if login.Code != http.StatusOK {
		t.Fatalf("login failed with %d", login.Code)
	}

	list := httptest.NewRequest(http.MethodGet, "/api/audit?status=failed", nil)
	for _, cookie := range login.Result().Cookies() {
		list.AddCookie(cookie)
	}
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, list)

	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listRec.Code)
	}

	var resp struct {
		Events []entities.AuthEvent `json:"events"`
		Total  int64                `json:"total"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Total != 1 || len(resp.Events) != 1 {
		t.Fatalf("expected one failed event, got total=%d events=%d", resp.Total, len(resp.Events))
	}
	if resp.Events[0].Status != entities.AuthStatusFailed {
		t.Errorf("unexpected event: %+v", resp.Events[0])
	}
}
