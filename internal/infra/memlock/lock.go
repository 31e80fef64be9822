// Package memlock is a process-local LockService with the same lease
// semantics as the Redis implementation, including expiry of abandoned holds.
package memlock

import (
	"context"
	"sync"
	"time"

	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
)

const retryInterval = 5 * time.Millisecond

type lease struct {
	token     string
	expiresAt time.Time
}

type Service struct {
	mu     sync.Mutex
	leases map[string]lease
}

func NewService() *Service {
	return &Service{leases: make(map[string]lease)}
}

var _ shared.LockService = (*Service)(nil)

func (s *Service) tryAcquire(key, token string, hold time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, held := s.leases[key]
	if held && time.Now().Before(current.expiresAt) {
		return false
	}
	s.leases[key] = lease{token: token, expiresAt: time.Now().Add(hold)}
	return true
}

func (s *Service) Acquire(ctx context.Context, key string, wait, hold time.Duration) (string, bool, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		if s.tryAcquire(key, token, hold) {
			return token, true, nil
		}
		if time.Now().After(deadline) {
			return "", false, nil
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (s *Service) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, held := s.leases[key]; held && current.token == token {
		delete(s.leases, key)
	}
	return nil
}
