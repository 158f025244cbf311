package sessionkit

import (
	"time"

	"github.com/fintrack/sessionkit/store"
)

// Report is a read-only snapshot of the session's wiring, for diagnostics
// panels and support dumps.
type Report struct {
	State                 State
	StorageBackend        string
	ExpiryMargin          time.Duration
	PublicRoutes          int
	IndicatorExemptRoutes int
	EventsEnabled         bool
	EventsDropped         uint64
	MetricsEnabled        bool
}

// Report returns the current wiring snapshot.
func (s *Session) Report() Report {
	if s == nil {
		return Report{}
	}

	backend := "custom"
	switch s.store.(type) {
	case *store.FileStore:
		backend = "file"
	case *store.MemoryStore:
		backend = "memory"
	case *store.RedisStore:
		backend = "redis"
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	return Report{
		State:                 state,
		StorageBackend:        backend,
		ExpiryMargin:          s.cfg.Refresh.ExpiryMargin,
		PublicRoutes:          s.routes.PublicCount(),
		IndicatorExemptRoutes: s.routes.ExemptCount(),
		EventsEnabled:         s.cfg.Events.Enabled,
		EventsDropped:         s.events.Dropped(),
		MetricsEnabled:        s.cfg.Metrics.Enabled,
	}
}
