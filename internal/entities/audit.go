package entities

import "time"

type AuthEventType string

const (
	AuthEventLogin      AuthEventType = "login"
	AuthEventLogout     AuthEventType = "logout"
	AuthEventBearer     AuthEventType = "bearer"
	AuthEventOAuthLogin AuthEventType = "oauth_login"
)

type AuthEventStatus string

const (
	AuthStatusSuccess AuthEventStatus = "success"
	AuthStatusFailed  AuthEventStatus = "failed"
	AuthStatusDenied  AuthEventStatus = "denied" // identity proven, authorization refused
)

// AuthEvent records one authentication or authorization outcome. Reasons
// live here and in the process log only; callers never see more than a
// generic 401.
type AuthEvent struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   string          `gorm:"size:36;index" json:"event_id"` // correlation UUID
	EventType AuthEventType   `gorm:"index;size:20" json:"event_type"`
	Method    string          `gorm:"size:20" json:"method"`
	Username  string          `gorm:"size:100" json:"username"`
	Status    AuthEventStatus `gorm:"size:20;index" json:"status"`
	Reason    string          `gorm:"size:500" json:"reason,omitempty"`
	IPAddress string          `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

func (AuthEvent) TableName() string {
	return "auth_events"
}
