package domain

import "time"

// User is the session principal derived from the decoded access token claims.
type User struct {
	Username    string        `json:"username"`
	Roles       []string      `json:"roles"`
	Role        DashboardType `json:"role"`
	UserID      string        `json:"userId"`
	County      string        `json:"county,omitempty"`
	TokenExpiry time.Time     `json:"tokenExpiry"`
}

// Valid reports whether a persisted user record carries the fields every
// consumer relies on.
func (u *User) Valid() bool {
	return u != nil && u.Username != "" && u.Role != ""
}

// HasRole reports whether the raw role claim is present.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
