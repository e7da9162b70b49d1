package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

const guestTokenKeyPrefix = "guest:token:"

// Redis stores guest sessions with native TTL expiry: expired sessions
// vanish without a sweep, which matches the model (guests expire, they are
// never revoked).
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

type guestRecord struct {
	GuestID     string    `json:"guest_id"`
	TenantID    string    `json:"tenant_id"`
	DisplayName string    `json:"display_name,omitempty"`
	AccessType  string    `json:"access_type"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Redis) Create(ctx context.Context, session *models.GuestSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("guest session already expired: %w", sentinel.ErrExpired)
	}
	body, err := json.Marshal(guestRecord{
		GuestID:     session.GuestID,
		TenantID:    session.TenantID.String(),
		DisplayName: session.DisplayName,
		AccessType:  string(session.AccessType),
		IssuedAt:    session.IssuedAt,
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal guest session: %w", err)
	}
	key := guestTokenKeyPrefix + session.Token
	if err := s.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("store guest session: %w", err)
	}
	return nil
}

func (s *Redis) FindByToken(ctx context.Context, tokenValue string) (*models.GuestSession, error) {
	raw, err := s.client.Get(ctx, guestTokenKeyPrefix+tokenValue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("guest session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load guest session: %w", err)
	}

	var record guestRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("unmarshal guest session: %w", err)
	}
	tenantID, err := id.ParseTenantID(record.TenantID)
	if err != nil {
		return nil, fmt.Errorf("unmarshal guest session tenant: %w", err)
	}
	return &models.GuestSession{
		GuestID:     record.GuestID,
		TenantID:    tenantID,
		DisplayName: record.DisplayName,
		AccessType:  models.AccessType(record.AccessType),
		Token:       tokenValue,
		IssuedAt:    record.IssuedAt,
		ExpiresAt:   record.ExpiresAt,
	}, nil
}
