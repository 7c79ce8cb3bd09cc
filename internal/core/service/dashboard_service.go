package service

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

// Summary section names.
const (
	sectionNotifications = "notifications"
	sectionTasks         = "tasks"
	sectionScheduler     = "scheduler"
)

type dashboardService struct {
	notifications ports.NotificationClient
	tasks         ports.TaskClient
	scheduler     ports.Scheduler
	log           zerolog.Logger
}

// NewDashboardService returns a DashboardService implementation.
func NewDashboardService(
	notifications ports.NotificationClient,
	tasks ports.TaskClient,
	scheduler ports.Scheduler,
	log zerolog.Logger,
) ports.DashboardService {
	return &dashboardService{
		notifications: notifications,
		tasks:         tasks,
		scheduler:     scheduler,
		log:           log,
	}
}

// Summary resolves navigation locally and fetches the remote sections
// concurrently. A failing section is reported in Errors; only cancellation
// of ctx fails the whole summary.
func (s *dashboardService) Summary(ctx context.Context, sess *domain.Session) (*ports.DashboardSummary, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	user := sess.User
	roles := sess.Roles()

	out := &ports.DashboardSummary{
		User:        user,
		Dashboard:   user.Role,
		RedirectURL: user.Role.URL(),
		Shortcuts:   domain.VisibleShortcuts(roles),
		Tabs:        domain.VisibleTabs(roles),
	}

	var mu sync.Mutex
	fail := func(section string, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn().Err(err).Str("section", section).Str("username", user.Username).Msg("dashboard section unavailable")
		mu.Lock()
		out.Errors = append(out.Errors, ports.SectionError{Section: section, Error: err.Error()})
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	if user.UserID != "" {
		g.Go(func() error {
			n, err := s.notifications.UnreadCount(gctx, sess.Token, user.UserID)
			if err != nil {
				return fail(sectionNotifications, err)
			}
			mu.Lock()
			out.UnreadNotifications = &n
			mu.Unlock()
			return nil
		})
	}

	if domain.CanAccessDashboard(roles, domain.DashboardCaseWorker) {
		g.Go(func() error {
			counts, err := s.tasks.TaskCounts(gctx, sess.Token, user.Username)
			if err != nil {
				return fail(sectionTasks, err)
			}
			mu.Lock()
			out.Tasks = counts
			mu.Unlock()
			return nil
		})
	}

	if domain.CanAccessDashboard(roles, domain.DashboardSupervisor) {
		g.Go(func() error {
			stats, err := s.scheduler.DashboardStats(gctx, sess.Token)
			if err != nil {
				return fail(sectionScheduler, err)
			}
			mu.Lock()
			out.Scheduler = stats
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out.Errors, func(i, j int) bool { return out.Errors[i].Section < out.Errors[j].Section })
	return out, nil
}
