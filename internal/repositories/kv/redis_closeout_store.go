package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
)

const defaultKeyPrefix = "closeout:"

// RedisCloseoutStore persists period lock state, run records and FX
// revaluation snapshots in Redis, suitable for distributed deployments where
// multiple instances share period-close state.
//
// Key layout, all under the prefix and keyed by (tenant, company, period):
//
//	closeout:state:<tenant>:<company>:<period>    JSON PeriodState (SET)
//	closeout:runs:<tenant>:<company>:<period>     JSON RunRecord list (RPUSH)
//	closeout:fxsnap:<tenant>:<company>:<period>   JSON RevaluationSnapshot (SET)
//
// RPUSH makes run appends insert-only, so concurrent runs into the same
// bucket never race on a read-modify-write.
type RedisCloseoutStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCloseoutStore creates a store with an existing Redis client.
func NewRedisCloseoutStore(client *redis.Client, keyPrefix string) *RedisCloseoutStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCloseoutStore{client: client, keyPrefix: keyPrefix}
}

var _ portsrepo.CloseoutStore = (*RedisCloseoutStore)(nil)

func (s *RedisCloseoutStore) stateKey(tenantID, companyID string, period domain.Period) string {
	return fmt.Sprintf("%sstate:%s:%s:%s", s.keyPrefix, tenantID, companyID, period)
}

func (s *RedisCloseoutStore) runsKey(tenantID, companyID string, period domain.Period) string {
	return fmt.Sprintf("%sruns:%s:%s:%s", s.keyPrefix, tenantID, companyID, period)
}

func (s *RedisCloseoutStore) snapshotKey(tenantID, companyID string, period domain.Period) string {
	return fmt.Sprintf("%sfxsnap:%s:%s:%s", s.keyPrefix, tenantID, companyID, period)
}

// GetPeriodState retrieves the stored lock state of a period. A period that
// was never transitioned has no key and reports ErrNotFound.
func (s *RedisCloseoutStore) GetPeriodState(ctx context.Context, tenantID, companyID string, period domain.Period) (*domain.PeriodState, error) {
	payload, err := s.client.Get(ctx, s.stateKey(tenantID, companyID, period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get period state: %w", err)
	}

	var state domain.PeriodState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode period state: %w", err)
	}
	return &state, nil
}

// SetPeriodState stores the lock state of a period, last-writer-wins.
func (s *RedisCloseoutStore) SetPeriodState(ctx context.Context, tenantID, companyID string, period domain.Period, state domain.PeriodState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode period state: %w", err)
	}
	if err := s.client.Set(ctx, s.stateKey(tenantID, companyID, period), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set period state: %w", err)
	}
	return nil
}

// AppendRun appends a run record to the period's bucket.
func (s *RedisCloseoutStore) AppendRun(ctx context.Context, tenantID, companyID string, period domain.Period, run domain.RunRecord) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run record: %w", err)
	}
	if err := s.client.RPush(ctx, s.runsKey(tenantID, companyID, period), payload).Err(); err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}
	return nil
}

// ListRuns retrieves all run records of a period's bucket in append order.
func (s *RedisCloseoutStore) ListRuns(ctx context.Context, tenantID, companyID string, period domain.Period) ([]domain.RunRecord, error) {
	payloads, err := s.client.LRange(ctx, s.runsKey(tenantID, companyID, period), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}

	runs := make([]domain.RunRecord, 0, len(payloads))
	for _, p := range payloads {
		var run domain.RunRecord
		if err := json.Unmarshal([]byte(p), &run); err != nil {
			return nil, fmt.Errorf("failed to decode run record: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// SaveRevaluationSnapshot stores the snapshot for its (company, period),
// overwriting any previous one.
func (s *RedisCloseoutStore) SaveRevaluationSnapshot(ctx context.Context, snapshot domain.RevaluationSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode revaluation snapshot: %w", err)
	}
	key := s.snapshotKey(snapshot.TenantID, snapshot.CompanyID, snapshot.Period)
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save revaluation snapshot: %w", err)
	}
	return nil
}

// FindRevaluationSnapshot retrieves the stored snapshot for a period.
func (s *RedisCloseoutStore) FindRevaluationSnapshot(ctx context.Context, tenantID, companyID string, period domain.Period) (*domain.RevaluationSnapshot, error) {
	payload, err := s.client.Get(ctx, s.snapshotKey(tenantID, companyID, period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get revaluation snapshot: %w", err)
	}

	var snapshot domain.RevaluationSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode revaluation snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close closes the Redis client.
func (s *RedisCloseoutStore) Close() error {
	return s.client.Close()
}
