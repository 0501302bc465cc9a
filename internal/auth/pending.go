package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/patrickmn/go-cache"
)

// DefaultStateTTL bounds how long a login may sit on the consent screen.
const DefaultStateTTL = 10 * time.Minute

// StateStore holds pending OAuth states in memory. Each state can be taken once.
//
// Expired states behave as absent; the cache janitor and [StateStore.PurgeExpired] reclaim them.
type StateStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

// NewStateStore creates a StateStore whose entries expire after ttl. A non-positive ttl uses [DefaultStateTTL].
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{cache: cache.New(ttl, ttl), ttl: ttl}
}

// Put records state as pending. A state that is already pending returns [shared.ErrStateExists].
func (s *StateStore) Put(state string) (models.PendingAuthorization, error) {
	p := models.PendingAuthorization{State: state, IssuedAt: time.Now()}
	if err := s.cache.Add(state, p, s.ttl); err != nil {
		return models.PendingAuthorization{}, fmt.Errorf("%w: %v", shared.ErrStateExists, err)
	}
	return p, nil
}

// Take removes state and reports whether it was pending and unexpired.
func (s *StateStore) Take(state string) (models.PendingAuthorization, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(state)
	if !ok {
		return models.PendingAuthorization{}, false
	}
	s.cache.Delete(state)

	p, ok := v.(models.PendingAuthorization)
	return p, ok
}

// PurgeExpired drops every expired state.
func (s *StateStore) PurgeExpired() {
	s.cache.DeleteExpired()
}

// Len returns the number of stored states, including expired ones not yet purged.
func (s *StateStore) Len() int {
	return s.cache.ItemCount()
}
