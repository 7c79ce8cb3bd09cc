package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
)

type stubNotifications struct {
	ports.NotificationClient
	count int
	err   error
}

func (n *stubNotifications) UnreadCount(_ context.Context, _, _ string) (int, error) {
	return n.count, n.err
}

type stubTasks struct {
	counts *domain.TaskCounts
	err    error
	calls  int
}

func (t *stubTasks) TaskCounts(_ context.Context, _, _ string) (*domain.TaskCounts, error) {
	t.calls++
	return t.counts, t.err
}

type stubScheduler struct {
	ports.Scheduler
	stats json.RawMessage
	err   error
	calls int
}

func (s *stubScheduler) DashboardStats(_ context.Context, _ string) (json.RawMessage, error) {
	s.calls++
	return s.stats, s.err
}

func authenticatedSession(roles ...string) *domain.Session {
	return &domain.Session{
		ID:    "s1",
		State: domain.SessionAuthenticated,
		Token: "tok",
		User: &domain.User{
			Username:    "jdoe",
			UserID:      "user-123",
			Roles:       roles,
			Role:        domain.DashboardForRoles(roles),
			TokenExpiry: time.Now().Add(time.Hour),
		},
	}
}

func TestDashboardService_Summary_Supervisor(t *testing.T) {
	tasks := &stubTasks{counts: &domain.TaskCounts{Open: 2, InProgress: 1}}
	sched := &stubScheduler{stats: json.RawMessage(`{"running":1}`)}
	svc := NewDashboardService(&stubNotifications{count: 4}, tasks, sched, zerolog.Nop())

	out, err := svc.Summary(context.Background(), authenticatedSession("SUPERVISOR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Dashboard != domain.DashboardSupervisor || out.RedirectURL != "/supervisor/dashboard" {
		t.Errorf("unexpected dashboard: %s %s", out.Dashboard, out.RedirectURL)
	}
	if out.UnreadNotifications == nil || *out.UnreadNotifications != 4 {
		t.Errorf("expected 4 unread notifications, got %v", out.UnreadNotifications)
	}
	if out.Tasks == nil || out.Tasks.Total() != 3 {
		t.Errorf("expected 3 tasks, got %+v", out.Tasks)
	}
	if string(out.Scheduler) != `{"running":1}` {
		t.Errorf("unexpected scheduler stats: %s", out.Scheduler)
	}
	if len(out.Errors) != 0 {
		t.Errorf("expected no section errors, got %+v", out.Errors)
	}
}

func TestDashboardService_Summary_ProviderSkipsStaffSections(t *testing.T) {
	tasks := &stubTasks{}
	sched := &stubScheduler{}
	svc := NewDashboardService(&stubNotifications{count: 0}, tasks, sched, zerolog.Nop())

	out, err := svc.Summary(context.Background(), authenticatedSession("PROVIDER"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks.calls != 0 || sched.calls != 0 {
		t.Errorf("expected no staff calls, got tasks=%d scheduler=%d", tasks.calls, sched.calls)
	}
	if out.Tasks != nil || out.Scheduler != nil {
		t.Error("expected staff sections to be empty")
	}
	if len(out.Shortcuts) == 0 {
		t.Error("expected shortcuts for provider")
	}
}

func TestDashboardService_Summary_PartialFailure(t *testing.T) {
	notif := &stubNotifications{err: errors.New("notifications: 503")}
	sched := &stubScheduler{err: errors.New("scheduler: connection refused")}
	tasks := &stubTasks{counts: &domain.TaskCounts{Open: 1}}
	svc := NewDashboardService(notif, tasks, sched, zerolog.Nop())

	out, err := svc.Summary(context.Background(), authenticatedSession("ADMIN"))
	if err != nil {
		t.Fatalf("section failures must not fail the summary: %v", err)
	}
	if len(out.Errors) != 2 {
		t.Fatalf("expected 2 section errors, got %+v", out.Errors)
	}
	if out.Errors[0].Section != "notifications" || out.Errors[1].Section != "scheduler" {
		t.Errorf("unexpected section order: %+v", out.Errors)
	}
	if out.Tasks == nil || out.Tasks.Open != 1 {
		t.Error("expected the healthy section to be returned")
	}
}

func TestDashboardService_Summary_Unauthenticated(t *testing.T) {
	svc := NewDashboardService(&stubNotifications{}, &stubTasks{}, &stubScheduler{}, zerolog.Nop())

	_, err := svc.Summary(context.Background(), domain.NewSession("x"))
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got: %v", err)
	}
}
