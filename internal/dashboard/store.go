package dashboard

import (
	"sync"

	"github.com/Sureka400/Ecolens-AI/internal/cache"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/google/uuid"
)

// Store keeps the live dashboards by session id. The least recently used
// session is closed when the store is full.
type Store struct {
	cfg      Config
	metrics  *observability.Metrics
	mu       sync.Mutex
	sessions *cache.LRU[string, *Dashboard]
}

// NewStore creates a store holding at most maxSessions dashboards, each
// created with cfg.
func NewStore(maxSessions int, cfg Config) *Store {
	s := &Store{cfg: cfg, metrics: cfg.Metrics}
	s.sessions = cache.New(maxSessions,
		cache.WithOnEvict(func(_ string, d *Dashboard) {
			s.metrics.ActiveSessions.Dec()
			d.Close()
		}),
	)
	return s
}

// Get returns the dashboard for id.
func (s *Store) Get(id string) (*Dashboard, bool) {
	if id == "" {
		return nil, false
	}
	return s.sessions.Get(id)
}

// GetOrCreate returns the dashboard for id, creating a new session when id is
// unknown. created reports whether a new session was started; its id may
// differ from the one requested.
func (s *Store) GetOrCreate(id string) (d *Dashboard, created bool) {
	if d, ok := s.Get(id); ok {
		return d, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.Get(id); ok {
		return d, false
	}

	d = New(uuid.NewString(), s.cfg)
	s.sessions.Put(d.ID(), d)
	s.metrics.ActiveSessions.Inc()
	return d, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.Len()
}

// Close closes every dashboard.
func (s *Store) Close() {
	s.sessions.Purge()
}
