package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

const runKeyPrefix = "biogpt:run:"

// RedisRunStore keeps run state in Redis so status polling works across
// multiple service instances. Runs expire after the configured TTL; a zero
// TTL keeps them until explicitly deleted.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRunStore(client *redis.Client, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{client: client, ttl: ttl}
}

func runKey(runID string) string {
	return runKeyPrefix + runID
}

func (s *RedisRunStore) Get(ctx context.Context, runID string) (*domain.ProcessingRun, error) {
	payload, err := s.client.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	var run domain.ProcessingRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &run, nil
}

func (s *RedisRunStore) Put(ctx context.Context, run *domain.ProcessingRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}
	if err := s.client.Set(ctx, runKey(run.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}
	return nil
}

func (s *RedisRunStore) Delete(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, runKey(runID)).Err(); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}
