package delegation

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

// Postgres persists delegation grants.
//
// Consume is the one operation with a real race (two concurrent verifies of
// a single-use grant); it is a single conditional UPDATE so the database
// serializes the increment. There is no read-then-write anywhere on the
// consumption path.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, grant *models.DelegationGrant) error {
	query := `
		INSERT INTO delegation_grants (
			id, issuer_id, target_tenant_id, token,
			issued_at, expires_at, used_count, max_uses
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(grant.ID),
		uuid.UUID(grant.IssuerID),
		uuid.UUID(grant.TargetTenantID),
		grant.Token,
		grant.IssuedAt,
		grant.ExpiresAt,
		grant.UsedCount,
		grant.MaxUses,
	)
	if err != nil {
		return fmt.Errorf("insert delegation grant: %w", err)
	}
	return nil
}

// Consume atomically increments used_count iff the grant is still
// consumable, returning the post-increment grant. Absent, expired, and
// exhausted grants all come back as sentinel errors for the service to
// collapse into its uniform outcome.
func (s *Postgres) Consume(ctx context.Context, tokenValue string, now time.Time) (*models.DelegationGrant, error) {
	query := `
		UPDATE delegation_grants
		SET used_count = used_count + 1, used_at = $2
		WHERE token = $1 AND expires_at > $2 AND used_count < max_uses
		RETURNING id, issuer_id, target_tenant_id, token, issued_at, expires_at, used_count, max_uses, used_at
	`
	grant, err := scanGrant(s.db.QueryRowContext(ctx, query, tokenValue, now))
	if err == nil {
		return grant, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// Nothing matched: distinguish "no such token" from "inert grant" so
	// the audit trail can say why, without weakening the caller-facing
	// uniform outcome.
	var exists bool
	if probeErr := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM delegation_grants WHERE token = $1)`, tokenValue,
	).Scan(&exists); probeErr != nil {
		return nil, fmt.Errorf("probe delegation grant: %w", probeErr)
	}
	if exists {
		return nil, fmt.Errorf("delegation grant inert: %w", sentinel.ErrExhausted)
	}
	return nil, fmt.Errorf("delegation grant not found: %w", sentinel.ErrNotFound)
}

// FindByToken reads a grant without consuming it. Used by tests and the
// admin dashboard's grant listing, never by the verification path.
func (s *Postgres) FindByToken(ctx context.Context, tokenValue string) (*models.DelegationGrant, error) {
	query := `
		SELECT id, issuer_id, target_tenant_id, token, issued_at, expires_at, used_count, max_uses, used_at
		FROM delegation_grants
		WHERE token = $1
	`
	return scanGrant(s.db.QueryRowContext(ctx, query, tokenValue))
}

// DeleteExpired removes every grant past its expiry and reports the count.
// Concurrent-safe by construction: rows it deletes were already failing
// every Consume.
func (s *Postgres) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM delegation_grants WHERE expires_at < $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired grants: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired grants: %w", err)
	}
	return int(affected), nil
}

func scanGrant(row *sql.Row) (*models.DelegationGrant, error) {
	var (
		grant    models.DelegationGrant
		grantID  uuid.UUID
		issuerID uuid.UUID
		tenantID uuid.UUID
	)
	err := row.Scan(
		&grantID,
		&issuerID,
		&tenantID,
		&grant.Token,
		&grant.IssuedAt,
		&grant.ExpiresAt,
		&grant.UsedCount,
		&grant.MaxUses,
		&grant.UsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delegation grant not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan delegation grant: %w", err)
	}
	grant.ID = id.GrantID(grantID)
	grant.IssuerID = id.SuperuserID(issuerID)
	grant.TargetTenantID = id.TenantID(tenantID)
	return &grant, nil
}
