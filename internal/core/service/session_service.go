package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/pkg/metrics"
)

// Purge reasons, also used as metric label values.
const (
	purgeLogout        = "logout"
	purgeExpired       = "expired"
	purgeMalformed     = "malformed"
	purgeRefreshFailed = "refresh_failed"
)

type sessionService struct {
	store    ports.SessionStore
	identity ports.IdentityProvider
	audit    ports.SessionEventRepository
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewSessionService returns a SessionService implementation.
func NewSessionService(
	store ports.SessionStore,
	identity ports.IdentityProvider,
	audit ports.SessionEventRepository,
	log zerolog.Logger,
) ports.SessionService {
	return &sessionService{
		store:    store,
		identity: identity,
		audit:    audit,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Restore rebuilds the session snapshot persisted under sessionID.
// A missing, expired or malformed record yields an unauthenticated session;
// in the last two cases every persisted key is purged in one operation.
func (s *sessionService) Restore(ctx context.Context, sessionID string) (*domain.Session, error) {
	loading, err := domain.NewSession(sessionID).Transition(domain.SessionLoading)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return loading.Transition(domain.SessionUnauthenticated)
	}

	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if rec == nil {
		return loading.Transition(domain.SessionUnauthenticated)
	}

	user, reason := s.checkRecord(rec)
	if reason != "" {
		if err := s.purge(ctx, sessionID, reason); err != nil {
			return nil, fmt.Errorf("restore session: %w", err)
		}
		s.record(ctx, sessionID, domain.EventExpired, user, reason)
		return loading.Transition(domain.SessionUnauthenticated)
	}

	loading.Token = rec.Token
	loading.RefreshToken = rec.RefreshToken
	loading.User = user
	return loading.Transition(domain.SessionAuthenticated)
}

// checkRecord decodes a persisted record. A non-empty reason means the record
// must be purged; the user is returned when it could be decoded.
func (s *sessionService) checkRecord(rec *ports.SessionRecord) (*domain.User, string) {
	if rec.Token == "" || len(rec.User) == 0 {
		return nil, purgeMalformed
	}

	var user domain.User
	if err := json.Unmarshal(rec.User, &user); err != nil || !user.Valid() {
		return nil, purgeMalformed
	}

	exp, err := domain.TokenExpiry(rec.Token)
	if err != nil {
		return &user, purgeMalformed
	}
	if !exp.After(s.now()) {
		return &user, purgeExpired
	}
	return &user, ""
}

// Login authenticates against the identity provider and persists a new session.
// Rejected credentials are reported in the result, not as an error.
func (s *sessionService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("rejected", "").Inc()
		return &ports.LoginResult{Error: domain.ErrInvalidCredentials.Error()}, nil
	}

	pair, err := s.identity.Login(ctx, username, password)
	if err != nil {
		var credErr *domain.CredentialsError
		if errors.As(err, &credErr) {
			metrics.LoginsTotal.WithLabelValues("rejected", "").Inc()
			s.record(ctx, "", domain.EventLoginFailed, &domain.User{Username: username}, credErr.Error())
			return &ports.LoginResult{Error: credErr.Error()}, nil
		}
		metrics.LoginsTotal.WithLabelValues("error", "").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	user, err := domain.UserFromToken(pair.AccessToken, username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error", "").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	sessionID := s.newID()
	if err := s.persist(ctx, sessionID, pair, user); err != nil {
		metrics.LoginsTotal.WithLabelValues("error", "").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success", string(user.Role)).Inc()
	s.record(ctx, sessionID, domain.EventLogin, user, "")
	s.log.Info().
		Str("session_id", sessionID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("login succeeded")

	return &ports.LoginResult{
		Success:     true,
		Role:        user.Role,
		RedirectURL: user.Role.URL(),
		User:        user,
		SessionID:   sessionID,
		ExpiresAt:   user.TokenExpiry,
	}, nil
}

// Refresh exchanges the stored refresh token for a new token pair. A failed
// exchange ends the session.
func (s *sessionService) Refresh(ctx context.Context, sessionID string) (*domain.Session, error) {
	current, err := s.Restore(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !current.Authenticated() {
		return nil, domain.ErrSessionExpired
	}
	if current.RefreshToken == "" {
		return nil, domain.ErrNoRefreshToken
	}

	pair, err := s.identity.Refresh(ctx, current.RefreshToken)
	if err != nil {
		var credErr *domain.CredentialsError
		if !errors.As(err, &credErr) {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		if perr := s.purge(ctx, sessionID, purgeRefreshFailed); perr != nil {
			s.log.Warn().Err(perr).Str("session_id", sessionID).Msg("failed to purge session after refresh rejection")
		}
		s.record(ctx, sessionID, domain.EventExpired, current.User, credErr.Error())
		return nil, domain.ErrSessionExpired
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = current.RefreshToken
	}

	user, err := domain.UserFromToken(pair.AccessToken, current.User.Username)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if err := s.persist(ctx, sessionID, pair, user); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	s.record(ctx, sessionID, domain.EventRefreshed, user, "")

	next := *current
	next.Token = pair.AccessToken
	next.RefreshToken = pair.RefreshToken
	next.User = user
	return &next, nil
}

// Logout purges every persisted key of an authenticated session. An unknown
// session is a no-op; an expired one was already purged by Restore.
func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	current, err := s.Restore(ctx, sessionID)
	if err != nil {
		return err
	}
	if !current.Authenticated() {
		return nil
	}
	if err := s.purge(ctx, sessionID, purgeLogout); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.record(ctx, sessionID, domain.EventLogout, current.User, "")
	return nil
}

func (s *sessionService) persist(ctx context.Context, sessionID string, pair *ports.TokenPair, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	ttl := user.TokenExpiry.Sub(s.now())
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	return s.store.Save(ctx, sessionID, ports.SessionRecord{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         raw,
	}, ttl)
}

func (s *sessionService) purge(ctx context.Context, sessionID, reason string) error {
	if err := s.store.Purge(ctx, sessionID); err != nil {
		return err
	}
	metrics.SessionsPurgedTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Str("session_id", sessionID).Str("reason", reason).Msg("session purged")
	return nil
}

// record appends to the audit trail. Failures are logged, never returned.
func (s *sessionService) record(ctx context.Context, sessionID string, kind domain.SessionEventKind, user *domain.User, detail string) {
	if s.audit == nil {
		return
	}
	ev := &domain.SessionEvent{
		SessionID: sessionID,
		Kind:      kind,
		Detail:    detail,
		Timestamp: s.now().UTC(),
	}
	if user != nil {
		ev.Username = user.Username
		ev.Role = user.Role
	}
	if err := s.audit.Insert(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Str("kind", string(kind)).Msg("failed to insert session event")
	}
}
