// Package service is the session and delegation authority. It owns every
// authentication decision; stores persist, transport translates, and this
// package decides.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/token"
	directory "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/platform/metrics"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// Per-kind lifetimes. Fixed on purpose: these are product decisions, not
// deployment knobs, and every environment gets the same ones.
const (
	godSessionTTL    = 12 * time.Hour
	clientSessionTTL = 24 * time.Hour
	refreshTTL       = 30 * 24 * time.Hour
	guestSessionTTL  = 72 * time.Hour
	delegationTTL    = 15 * time.Minute
)

var tracer = otel.Tracer("github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/service")

// startSpan opens a child span around one authority operation.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// errInvalidCredentials is the single value returned for every credential
// failure: unknown username, unknown email, wrong secret, unknown access
// code. One value, so no caller can distinguish the causes.
var errInvalidCredentials = dErrors.New(dErrors.CodeInvalidCredentials, "invalid credentials")

// errSessionNotFound uniformly covers absent, expired, and revoked sessions.
var errSessionNotFound = dErrors.New(dErrors.CodeSessionNotFound, "session not found")

// errGrantNotUsable uniformly covers absent, expired, and exhausted grants.
var errGrantNotUsable = dErrors.New(dErrors.CodeGrantExhausted, "delegation grant is not usable")

type DirectoryStore interface {
	FindSuperuserByUsername(ctx context.Context, username string) (*directory.Superuser, error)
	FindSuperuserByID(ctx context.Context, superuserID id.SuperuserID) (*directory.Superuser, error)
	FindOwnerByEmail(ctx context.Context, email string) (*directory.Owner, error)
	FindTenantByID(ctx context.Context, tenantID id.TenantID) (*directory.Tenant, error)
	FindTenantByAccessCode(ctx context.Context, code string) (*directory.Tenant, error)
	UpdateSubscriptionStatus(ctx context.Context, tenantID id.TenantID, status directory.SubscriptionStatus) error
	DeleteTenant(ctx context.Context, tenantID id.TenantID) error
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByToken(ctx context.Context, tokenValue string, kind models.PrincipalKind) (*models.Session, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
	TouchLastUsed(ctx context.Context, sessionID id.SessionID, now time.Time) error
	Revoke(ctx context.Context, tokenValue string, reason models.RevocationReason, now time.Time) (bool, error)
	AdvanceAccessToken(ctx context.Context, sessionID id.SessionID, newToken string, expiresAt, now time.Time) error
	RevokeAllForPrincipal(ctx context.Context, principalID string, kind models.PrincipalKind, reason models.RevocationReason, now time.Time) (int, error)
}

type GuestSessionStore interface {
	Create(ctx context.Context, session *models.GuestSession) error
	FindByToken(ctx context.Context, tokenValue string) (*models.GuestSession, error)
}

type DelegationStore interface {
	Create(ctx context.Context, grant *models.DelegationGrant) error
	Consume(ctx context.Context, tokenValue string, now time.Time) (*models.DelegationGrant, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates logins, verification, refresh, revocation, and
// delegation against the injected stores. It is stateless; every call reads
// its clock from the request context so one request sees one instant.
type Service struct {
	directory   DirectoryStore
	sessions    SessionStore
	guests      GuestSessionStore
	delegations DelegationStore
	tokens      *token.Generator

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service. Logger defaults to a no-op-ish discard-free
// slog.Default; audit and metrics are optional.
func New(dir DirectoryStore, sessions SessionStore, guests GuestSessionStore, delegations DelegationStore, opts ...Option) *Service {
	s := &Service{
		directory:   dir,
		sessions:    sessions,
		guests:      guests,
		delegations: delegations,
		tokens:      token.NewGenerator(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// logAudit emits one audit event, best-effort. A failed append is logged and
// swallowed: audit must never fail the operation it records.
func (s *Service) logAudit(ctx context.Context, action audit.Action, actorKind audit.ActorKind, actorID, details string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		ActorKind: actorKind,
		ActorID:   actorID,
		Details:   details,
		RequestID: requestcontext.RequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit append failed",
			"action", string(action), "error", err)
	}
}

func (s *Service) observeLogin(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(kind, outcome)
	}
}

func (s *Service) observeVerify(kind, outcome string, startedAt time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveVerify(kind, outcome, float64(time.Since(startedAt).Microseconds())/1000.0)
	}
}
