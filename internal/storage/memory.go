package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sevigo/code-reviewer/internal/core"
)

type memoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	reviews []core.StoredReview
	now     func() time.Time
}

// NewMemoryStore creates a Store that keeps reviews in process memory.
// Contents are lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{now: time.Now}
}

func (s *memoryStore) SaveReview(_ context.Context, r *core.StoredReview) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID
	r.CreatedAt = s.now().UTC()
	s.reviews = append(s.reviews, *r)
	return nil
}

func (s *memoryStore) ListReviews(_ context.Context, owner string) ([]core.StoredReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.StoredReview{}
	for _, r := range s.reviews {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
