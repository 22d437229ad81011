package audit

import (
	"log"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/paasops/authgate/internal/database/audit"
	"github.com/paasops/authgate/internal/entities"
)

// Service records authentication and authorization outcomes. A nil Service
// is safe to call and drops every event, so wiring stays unconditional.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an auth event.
func (s *Service) Log(event *entities.AuthEvent) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an auth event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuthEvent) {
	if s == nil || s.repo == nil {
		return
	}
	go func() {
		if err := s.Log(event); err != nil {
			log.Printf("Failed to log auth event: %v", err)
		}
	}()
}

// LoginSuccess records a successful interactive verification.
func (s *Service) LoginSuccess(method entities.Method, username, ip string) {
	s.LogAsync(&entities.AuthEvent{
		EventType: eventTypeFor(method),
		Method:    string(method),
		Username:  username,
		Status:    entities.AuthStatusSuccess,
		IPAddress: ip,
	})
}

// LoginFailure records a credential mismatch.
func (s *Service) LoginFailure(method entities.Method, username, ip string, err error) {
	s.LogAsync(&entities.AuthEvent{
		EventType: eventTypeFor(method),
		Method:    string(method),
		Username:  username,
		Status:    entities.AuthStatusFailed,
		Reason:    truncate(errString(err), 500),
		IPAddress: ip,
	})
}

// AuthorizationDenied records a proven identity refused by policy. Distinct
// from LoginFailure: the credentials were right, the membership was not.
func (s *Service) AuthorizationDenied(method entities.Method, username, ip string, err error) {
	s.LogAsync(&entities.AuthEvent{
		EventType: eventTypeFor(method),
		Method:    string(method),
		Username:  username,
		Status:    entities.AuthStatusDenied,
		Reason:    truncate(errString(err), 500),
		IPAddress: ip,
	})
}

// BearerAccepted records a matched API token.
func (s *Service) BearerAccepted(username, ip string) {
	s.LogAsync(&entities.AuthEvent{
		EventType: entities.AuthEventBearer,
		Method:    string(entities.MethodLocal),
		Username:  username,
		Status:    entities.AuthStatusSuccess,
		IPAddress: ip,
	})
}

// BearerRejected records an unmatched API token. The token itself is never
// written anywhere.
func (s *Service) BearerRejected(ip string) {
	s.LogAsync(&entities.AuthEvent{
		EventType: entities.AuthEventBearer,
		Method:    string(entities.MethodLocal),
		Status:    entities.AuthStatusFailed,
		IPAddress: ip,
	})
}

// Logout records a session teardown.
func (s *Service) Logout(identity entities.Identity, ip string) {
	s.LogAsync(&entities.AuthEvent{
		EventType: entities.AuthEventLogout,
		Method:    string(identity.Method),
		Username:  identity.Username,
		Status:    entities.AuthStatusSuccess,
		IPAddress: ip,
	})
}

func eventTypeFor(method entities.Method) entities.AuthEventType {
	switch method {
	case entities.MethodGitHub, entities.MethodOAuth2:
		return entities.AuthEventOAuthLogin
	}
	return entities.AuthEventLogin
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
