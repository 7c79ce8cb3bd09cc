package domain

import (
	"fmt"
	"time"
)

// SessionState is the lifecycle state of a portal session.
type SessionState string

const (
	SessionUninitialized   SessionState = "uninitialized"
	SessionLoading         SessionState = "loading"
	SessionAuthenticated   SessionState = "authenticated"
	SessionUnauthenticated SessionState = "unauthenticated"
)

// validSessionTransitions defines the allowed state machine transitions.
var validSessionTransitions = map[SessionState][]SessionState{
	SessionUninitialized:   {SessionLoading},
	SessionLoading:         {SessionAuthenticated, SessionUnauthenticated},
	SessionAuthenticated:   {SessionUnauthenticated},
	SessionUnauthenticated: {SessionLoading},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is an immutable snapshot of one browser session. Handlers receive
// it from the session middleware and never mutate it; state changes produce
// a new snapshot through Transition.
type Session struct {
	ID           string       `json:"-"`
	State        SessionState `json:"state"`
	Token        string       `json:"-"`
	RefreshToken string       `json:"-"`
	User         *User        `json:"user,omitempty"`
}

// NewSession returns a fresh uninitialized session for id.
func NewSession(id string) *Session {
	return &Session{ID: id, State: SessionUninitialized}
}

// Transition returns a copy of s in state next.
func (s *Session) Transition(next SessionState) (*Session, error) {
	if !s.State.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, s.State, next)
	}
	clone := *s
	clone.State = next
	if next == SessionUnauthenticated {
		clone.Token = ""
		clone.RefreshToken = ""
		clone.User = nil
	}
	return &clone, nil
}

// Authenticated reports whether the snapshot carries a usable principal.
func (s *Session) Authenticated() bool {
	return s != nil && s.State == SessionAuthenticated && s.User != nil
}

// Roles returns the raw role claims of the principal, or nil.
func (s *Session) Roles() []string {
	if !s.Authenticated() {
		return nil
	}
	return s.User.Roles
}

// Dashboard returns the landing dashboard for the session.
func (s *Session) Dashboard() DashboardType {
	if !s.Authenticated() {
		return DashboardUser
	}
	return s.User.Role
}

// SessionEventKind labels an entry of the session audit trail.
type SessionEventKind string

const (
	EventLogin       SessionEventKind = "login"
	EventLoginFailed SessionEventKind = "login_failed"
	EventLogout      SessionEventKind = "logout"
	EventExpired     SessionEventKind = "expired"
	EventRefreshed   SessionEventKind = "refreshed"
)

// SessionEvent is one entry of the session audit trail.
type SessionEvent struct {
	SessionID string
	Kind      SessionEventKind
	Username  string
	Role      DashboardType
	Detail    string
	Timestamp time.Time
}
