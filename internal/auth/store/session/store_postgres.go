package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

// Clock abstracts time.Now for testability.
type Clock func() time.Time

// Postgres persists god/client sessions. All mutations are single-row
// statements; the database's row atomicity is the only concurrency control
// this store needs.
type Postgres struct {
	db    *sql.DB
	clock Clock
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) PostgresOption {
	return func(s *Postgres) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

const sessionColumns = `
	id, principal_id, principal_kind, token,
	COALESCE(refresh_token, ''), COALESCE(refresh_expires_at, 'epoch'::timestamptz),
	issued_at, expires_at, last_used_at, revoked_at, COALESCE(revoked_reason, '')`

func (s *Postgres) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (
			id, principal_id, principal_kind, token,
			refresh_token, refresh_expires_at,
			issued_at, expires_at, last_used_at
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 'epoch'::timestamptz), $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(session.ID),
		session.PrincipalID,
		string(session.PrincipalKind),
		session.Token,
		session.RefreshToken,
		session.RefreshExpiresAt,
		session.IssuedAt,
		session.ExpiresAt,
		session.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Postgres) FindByToken(ctx context.Context, token string, kind models.PrincipalKind) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND principal_kind = $2`
	return s.scanSession(s.db.QueryRowContext(ctx, query, token, string(kind)))
}

func (s *Postgres) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE refresh_token = $1`
	return s.scanSession(s.db.QueryRowContext(ctx, query, refreshToken))
}

func (s *Postgres) scanSession(row *sql.Row) (*models.Session, error) {
	var (
		session   models.Session
		sessionID uuid.UUID
		kind      string
		reason    string
	)
	err := row.Scan(
		&sessionID,
		&session.PrincipalID,
		&kind,
		&session.Token,
		&session.RefreshToken,
		&session.RefreshExpiresAt,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.LastUsedAt,
		&session.RevokedAt,
		&reason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.ID = id.SessionID(sessionID)
	session.PrincipalKind = models.PrincipalKind(kind)
	session.RevokedReason = models.RevocationReason(reason)
	return &session, nil
}

// TouchLastUsed bumps the liveness timestamp. Best-effort by contract: the
// caller ignores failures.
func (s *Postgres) TouchLastUsed(ctx context.Context, sessionID id.SessionID, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_used_at = $2 WHERE id = $1`,
		uuid.UUID(sessionID), now,
	)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Revoke marks the session owning the token revoked. Returns false when no
// unrevoked session matched; that is not an error (logout is idempotent).
func (s *Postgres) Revoke(ctx context.Context, tokenValue string, reason models.RevocationReason, now time.Time) (bool, error) {
	query := `
		UPDATE sessions
		SET revoked_at = $2, revoked_reason = $3
		WHERE token = $1 AND revoked_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, tokenValue, now, reason.String())
	if err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	return affected > 0, nil
}

// AdvanceAccessToken swaps in a fresh access token and extends the session
// expiry in place. The refresh token is untouched. The WHERE clause refuses
// sessions revoked between lookup and update.
func (s *Postgres) AdvanceAccessToken(ctx context.Context, sessionID id.SessionID, newToken string, expiresAt, now time.Time) error {
	query := `
		UPDATE sessions
		SET token = $2, expires_at = $3, last_used_at = $4
		WHERE id = $1 AND revoked_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, uuid.UUID(sessionID), newToken, expiresAt, now)
	if err != nil {
		return fmt.Errorf("advance session token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance session token: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// RevokeAllForPrincipal revokes every live session of one principal.
// Used when a client is deleted or its subscription status changes.
func (s *Postgres) RevokeAllForPrincipal(ctx context.Context, principalID string, kind models.PrincipalKind, reason models.RevocationReason, now time.Time) (int, error) {
	query := `
		UPDATE sessions
		SET revoked_at = $3, revoked_reason = $4
		WHERE principal_id = $1 AND principal_kind = $2 AND revoked_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, principalID, string(kind), now, reason.String())
	if err != nil {
		return 0, fmt.Errorf("revoke principal sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke principal sessions: %w", err)
	}
	return int(affected), nil
}
