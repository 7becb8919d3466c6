package memory

import (
	"context"
	"sync"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

// Store is the in-memory moderation store: a mutex-guarded map keyed
// by review id. State is volatile and process-lifetime by design.
// Pending is the default, so pending writes delete the entry and the
// map only holds deviations.
type Store struct {
	mu      sync.RWMutex
	records map[int64]domain.ApprovalStatus
}

func New() *Store {
	return &Store{records: make(map[int64]domain.ApprovalStatus)}
}

func (s *Store) GetStatus(_ context.Context, id int64) (domain.ApprovalStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.records[id]; ok {
		return st, nil
	}
	return domain.Pending, nil
}

func (s *Store) SetStatus(_ context.Context, id int64, status domain.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == domain.Pending {
		delete(s.records, id)
		return nil
	}
	s.records[id] = status
	return nil
}

func (s *Store) BulkSetStatus(_ context.Context, ids []int64, status domain.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if status == domain.Pending {
			delete(s.records, id)
			continue
		}
		s.records[id] = status
	}
	return nil
}

func (s *Store) ApprovedIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.records))
	for id, st := range s.records {
		if st == domain.Approved {
			out = append(out, id)
		}
	}
	return out, nil
}

// Count reports how many explicit records exist. Pending never counts,
// since pending writes remove the entry.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
