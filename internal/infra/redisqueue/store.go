// Package redisqueue implements the coupon admission queue on Redis sorted
// sets: one ZSET per coupon keyed by enqueue time, plus one string key per
// (coupon, user) result.
package redisqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKeyPrefix  = "coupon:queue:"
	resultKeyPrefix = "coupon:result:"
)

type Store struct {
	client *redis.Client
	cfg    config.AdmissionConfig
}

func NewStore(client *redis.Client, cfg config.AdmissionConfig) shared.AdmissionQueue {
	return &Store{client: client, cfg: cfg}
}

func queueKey(couponID uuid.UUID) string {
	return queueKeyPrefix + couponID.String()
}

func resultKey(couponID, userID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", resultKeyPrefix, couponID, userID)
}

func (s *Store) Push(ctx context.Context, couponID, userID uuid.UUID, enqueuedAt time.Time) (bool, error) {
	// A recorded result means the request already finished; never re-queue.
	exists, err := s.client.Exists(ctx, resultKey(couponID, userID)).Result()
	if err != nil {
		return false, errs.Wrap(err, "failed to check issuance result")
	}
	if exists > 0 {
		return false, nil
	}

	key := queueKey(couponID)
	added, err := s.client.ZAddNX(ctx, key, redis.Z{
		Score:  float64(enqueuedAt.UnixNano()),
		Member: userID.String(),
	}).Result()
	if err != nil {
		return false, errs.Wrap(err, "failed to enqueue")
	}
	if added == 0 {
		return false, nil
	}

	// Abandoned queues disappear on their own.
	if err := s.client.Expire(ctx, key, s.cfg.QueueTTL).Err(); err != nil {
		return false, errs.Wrap(err, "failed to refresh queue ttl")
	}
	return true, nil
}

func (s *Store) PopBatch(ctx context.Context, couponID uuid.UUID, limit int) ([]uuid.UUID, error) {
	entries, err := s.client.ZPopMin(ctx, queueKey(couponID), int64(limit)).Result()
	if err != nil {
		return nil, errs.Wrap(err, "failed to pop batch")
	}

	userIDs := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			return nil, errs.Newf("unexpected queue member type %T", entry.Member)
		}
		userID, err := uuid.Parse(member)
		if err != nil {
			return nil, errs.Wrap(err, "corrupt queue member")
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}

func (s *Store) Position(ctx context.Context, couponID, userID uuid.UUID) (int64, bool, error) {
	rank, err := s.client.ZRank(ctx, queueKey(couponID), userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errs.Wrap(err, "failed to read queue rank")
	}
	return rank + 1, true, nil
}

func (s *Store) ActiveQueues(ctx context.Context) ([]uuid.UUID, error) {
	var (
		couponIDs []uuid.UUID
		cursor    uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, queueKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, errs.Wrap(err, "failed to scan queues")
		}
		for _, key := range keys {
			couponID, err := uuid.Parse(strings.TrimPrefix(key, queueKeyPrefix))
			if err != nil {
				continue
			}
			couponIDs = append(couponIDs, couponID)
		}
		cursor = next
		if cursor == 0 {
			return couponIDs, nil
		}
	}
}

func (s *Store) SaveResult(ctx context.Context, result shared.IssuanceResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errs.Wrap(err, "failed to encode issuance result")
	}

	// SET NX keeps the first recorded outcome; a duplicate write is a no-op.
	err = s.client.SetNX(ctx, resultKey(result.CouponID, result.UserID), payload, s.cfg.ResultTTL).Err()
	if err != nil {
		return errs.Wrap(err, "failed to save issuance result")
	}
	return nil
}

func (s *Store) GetResult(ctx context.Context, couponID, userID uuid.UUID) (*shared.IssuanceResult, error) {
	payload, err := s.client.Get(ctx, resultKey(couponID, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "failed to read issuance result")
	}

	var result shared.IssuanceResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errs.Wrap(err, "corrupt issuance result")
	}
	return &result, nil
}
