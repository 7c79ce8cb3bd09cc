package ports

import (
	"context"
	"encoding/json"

	"github.com/cmips/portal-gateway/internal/core/domain"
)

// SectionError reports a summary section that could not be loaded. The rest
// of the summary is still returned.
type SectionError struct {
	Section string `json:"section"`
	Error   string `json:"error"`
}

// DashboardSummary is the landing payload for an authenticated session.
type DashboardSummary struct {
	User                *domain.User         `json:"user"`
	Dashboard           domain.DashboardType `json:"dashboard"`
	RedirectURL         string               `json:"redirectUrl"`
	Shortcuts           []domain.NavItem     `json:"shortcuts"`
	Tabs                []domain.NavItem     `json:"tabs"`
	UnreadNotifications *int                 `json:"unreadNotifications,omitempty"`
	Tasks               *domain.TaskCounts   `json:"tasks,omitempty"`
	Scheduler           json.RawMessage      `json:"scheduler,omitempty"`
	Errors              []SectionError       `json:"errors,omitempty"`
}

// DashboardService assembles the landing summary.
type DashboardService interface {
	Summary(ctx context.Context, sess *domain.Session) (*DashboardSummary, error)
}
