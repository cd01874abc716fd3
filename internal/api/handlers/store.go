package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/model"
)

// StoredRun is a completed run kept for result downloads.
type StoredRun struct {
	ID        string
	CreatedAt time.Time
	Units     []model.ProductionUnit
	Run       *dispatch.Run
}

// RunStore keeps runs in memory for a fixed TTL. Expired runs are dropped
// lazily on access and on insert.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]StoredRun
	ttl  time.Duration
	now  func() time.Time
}

func NewRunStore(ttl time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunStore{
		runs: make(map[string]StoredRun),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores a run under a fresh id and returns the id.
func (s *RunStore) Put(units []model.ProductionUnit, run *dispatch.Run) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	id := uuid.NewString()
	s.runs[id] = StoredRun{
		ID:        id,
		CreatedAt: s.now(),
		Units:     units,
		Run:       run,
	}
	return id
}

func (s *RunStore) Get(id string) (StoredRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return StoredRun{}, false
	}
	if s.expired(r) {
		delete(s.runs, id)
		return StoredRun{}, false
	}
	return r, true
}

func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

func (s *RunStore) expired(r StoredRun) bool {
	return s.now().Sub(r.CreatedAt) > s.ttl
}

func (s *RunStore) evictLocked() {
	for id, r := range s.runs {
		if s.expired(r) {
			delete(s.runs, id)
		}
	}
}
