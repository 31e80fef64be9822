// Package redislock implements the issuance lock as a Redis lease: SET NX
// with an expiry, released by a token-checked Lua script so one process can
// never free another process's lease.
package redislock

import (
	"context"
	"time"

	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const retryInterval = 50 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Service struct {
	client *redis.Client
}

func NewService(client *redis.Client) shared.LockService {
	return &Service{client: client}
}

// Acquire polls SET NX until the lock is taken or wait expires. The hold
// duration is the lease: if the holder dies, the key expires and the lock
// frees itself.
func (s *Service) Acquire(ctx context.Context, key string, wait, hold time.Duration) (string, bool, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := s.client.SetNX(ctx, key, token, hold).Result()
		if err != nil {
			return "", false, errs.Wrap(err, "failed to acquire lock")
		}
		if ok {
			return token, true, nil
		}

		if time.Now().After(deadline) {
			return "", false, nil
		}
		select {
		case <-ctx.Done():
			return "", false, errs.Wrap(ctx.Err(), "lock wait canceled")
		case <-time.After(retryInterval):
		}
	}
}

func (s *Service) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil {
		return errs.Wrap(err, "failed to release lock")
	}
	return nil
}
