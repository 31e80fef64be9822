// Package memqueue is a process-local AdmissionQueue with the same semantics
// as the Redis implementation. It backs tests and single-node development.
package memqueue

import (
	"context"
	"sync"
	"time"

	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
)

type entry struct {
	userID     uuid.UUID
	enqueuedAt time.Time
}

type resultKey struct {
	couponID uuid.UUID
	userID   uuid.UUID
}

type Store struct {
	mu      sync.Mutex
	queues  map[uuid.UUID][]entry
	results map[resultKey]shared.IssuanceResult
}

func NewStore() *Store {
	return &Store{
		queues:  make(map[uuid.UUID][]entry),
		results: make(map[resultKey]shared.IssuanceResult),
	}
}

func (s *Store) Push(_ context.Context, couponID, userID uuid.UUID, enqueuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.results[resultKey{couponID, userID}]; done {
		return false, nil
	}
	for _, e := range s.queues[couponID] {
		if e.userID == userID {
			return false, nil
		}
	}
	s.queues[couponID] = append(s.queues[couponID], entry{userID: userID, enqueuedAt: enqueuedAt})
	return true, nil
}

func (s *Store) PopBatch(_ context.Context, couponID uuid.UUID, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[couponID]
	if len(queue) == 0 {
		return nil, nil
	}
	if limit > len(queue) {
		limit = len(queue)
	}

	userIDs := make([]uuid.UUID, 0, limit)
	for _, e := range queue[:limit] {
		userIDs = append(userIDs, e.userID)
	}

	remaining := queue[limit:]
	if len(remaining) == 0 {
		delete(s.queues, couponID)
	} else {
		s.queues[couponID] = remaining
	}
	return userIDs, nil
}

func (s *Store) Position(_ context.Context, couponID, userID uuid.UUID) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.queues[couponID] {
		if e.userID == userID {
			return int64(i) + 1, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) ActiveQueues(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	couponIDs := make([]uuid.UUID, 0, len(s.queues))
	for couponID := range s.queues {
		couponIDs = append(couponIDs, couponID)
	}
	return couponIDs, nil
}

func (s *Store) SaveResult(_ context.Context, result shared.IssuanceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resultKey{result.CouponID, result.UserID}
	if _, done := s.results[key]; done {
		return nil
	}
	s.results[key] = result
	return nil
}

func (s *Store) GetResult(_ context.Context, couponID, userID uuid.UUID) (*shared.IssuanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[resultKey{couponID, userID}]
	if !ok {
		return nil, nil
	}
	return &result, nil
}
