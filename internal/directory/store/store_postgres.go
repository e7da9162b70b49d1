package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

// Postgres reads the principal tables (superusers, tenant_owners, tenants).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const superuserColumns = `id, username, COALESCE(email, ''), password_hash, active, created_at`

func (s *Postgres) FindSuperuserByUsername(ctx context.Context, username string) (*models.Superuser, error) {
	query := `SELECT ` + superuserColumns + ` FROM superusers WHERE username = $1`
	return s.scanSuperuser(s.db.QueryRowContext(ctx, query, username))
}

func (s *Postgres) FindSuperuserByID(ctx context.Context, superuserID id.SuperuserID) (*models.Superuser, error) {
	query := `SELECT ` + superuserColumns + ` FROM superusers WHERE id = $1`
	return s.scanSuperuser(s.db.QueryRowContext(ctx, query, uuid.UUID(superuserID)))
}

func (s *Postgres) scanSuperuser(row *sql.Row) (*models.Superuser, error) {
	var (
		su  models.Superuser
		uid uuid.UUID
	)
	err := row.Scan(&uid, &su.Username, &su.Email, &su.PasswordHash, &su.Active, &su.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("superuser not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan superuser: %w", err)
	}
	su.ID = id.SuperuserID(uid)
	return &su, nil
}

func (s *Postgres) FindOwnerByEmail(ctx context.Context, email string) (*models.Owner, error) {
	query := `SELECT id, email, password_hash, created_at FROM tenant_owners WHERE email = $1`
	var (
		owner models.Owner
		uid   uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, email).
		Scan(&uid, &owner.Email, &owner.PasswordHash, &owner.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("owner not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan tenant owner: %w", err)
	}
	owner.ID = id.TenantID(uid)
	return &owner, nil
}

const tenantColumns = `id, name, slug, contact_email, subscription_status, guest_code, admin_code, created_at, updated_at`

func (s *Postgres) FindTenantByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return s.scanTenant(s.db.QueryRowContext(ctx, query, uuid.UUID(tenantID)))
}

// FindTenantByAccessCode matches either code slot. The caller decides which
// slot matched (constant-time) to derive the access type.
func (s *Postgres) FindTenantByAccessCode(ctx context.Context, code string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE guest_code = $1 OR admin_code = $1`
	return s.scanTenant(s.db.QueryRowContext(ctx, query, code))
}

func (s *Postgres) scanTenant(row *sql.Row) (*models.Tenant, error) {
	var (
		tenant models.Tenant
		uid    uuid.UUID
		status string
	)
	err := row.Scan(
		&uid,
		&tenant.Name,
		&tenant.Slug,
		&tenant.ContactEmail,
		&status,
		&tenant.GuestCode,
		&tenant.AdminCode,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	tenant.ID = id.TenantID(uid)
	tenant.SubscriptionStatus = models.SubscriptionStatus(status)
	return &tenant, nil
}

func (s *Postgres) UpdateSubscriptionStatus(ctx context.Context, tenantID id.TenantID, status models.SubscriptionStatus) error {
	query := `UPDATE tenants SET subscription_status = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, uuid.UUID(tenantID), string(status))
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteTenant removes the tenant row and its owner credential. Sessions for
// the owner are revoked by the service before this is called.
func (s *Postgres) DeleteTenant(ctx context.Context, tenantID id.TenantID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tenant_owners WHERE id = $1`, uuid.UUID(tenantID)); err != nil {
		return fmt.Errorf("delete tenant owner: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, uuid.UUID(tenantID))
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
