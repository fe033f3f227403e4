package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store keeps sessions in memory and expires them after ttl of inactivity.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
	// guards creation so two requests never build the same id twice
	mu sync.Mutex
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Store{cache: cache.New(ttl, cleanup), ttl: ttl}
}

// Ensure returns id when it names a live session, otherwise a fresh session id.
func (s *Store) Ensure(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if _, found := s.cache.Get(id); found {
			return id, false
		}
	}
	created := &Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	s.cache.Set(created.ID, &entry{session: created}, cache.DefaultExpiration)
	return created.ID, true
}

func (s *Store) lookup(id string) (*entry, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	e := x.(*entry)
	// refresh expiration on every access
	s.cache.Set(id, e, cache.DefaultExpiration)
	return e, nil
}

// Update runs fn with exclusive access to the session. Requests of the same
// session are serialized; different sessions proceed in parallel.
func (s *Store) Update(id string, fn func(*Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// View runs fn with the session locked. fn must not keep references past return.
func (s *Store) View(id string, fn func(*Session)) error {
	return s.Update(id, func(sess *Session) error {
		fn(sess)
		return nil
	})
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
