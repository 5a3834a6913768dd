package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

const reasonCachePrefix = "support-desk:reason:"

// cachedReasonRepository is a cache-aside layer in front of the Postgres
// reason repository. Reason policies sit on the ticket-creation hot path
// and change rarely.
type cachedReasonRepository struct {
	inner  ReasonRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedReasonRepository wraps inner with a Redis cache. A nil client
// disables caching.
func NewCachedReasonRepository(inner ReasonRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) ReasonRepository {
	if client == nil {
		return inner
	}
	return &cachedReasonRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *cachedReasonRepository) GetByID(ctx context.Context, id string) (*domain.Reason, error) {
	key := reasonCachePrefix + id
	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var reason domain.Reason
		if err := json.Unmarshal(raw, &reason); err == nil {
			return &reason, nil
		}
		// corrupted entry, fall through to the source of truth
		r.client.Del(ctx, key)
	}

	reason, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(reason); err == nil {
		if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			r.logger.Warn("reason cache set failed", zap.String("reason_id", id), zap.Error(err))
		}
	}
	return reason, nil
}

func (r *cachedReasonRepository) Create(ctx context.Context, reason *domain.Reason) error {
	return r.inner.Create(ctx, reason)
}

func (r *cachedReasonRepository) Update(ctx context.Context, reason *domain.Reason) error {
	if err := r.inner.Update(ctx, reason); err != nil {
		return err
	}
	r.client.Del(ctx, reasonCachePrefix+reason.ID)
	return nil
}

func (r *cachedReasonRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Reason, error) {
	return r.inner.ListByDepartment(ctx, departmentID)
}
