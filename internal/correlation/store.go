// Package correlation tracks outstanding outbound sends and matches
// inbound replies back to them within a bounded monitoring window.
package correlation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dominusativos/captazap/internal/leads"
	"github.com/dominusativos/captazap/internal/phone"
	"github.com/dominusativos/captazap/pkg/logging"
)

var (
	// ErrNotFound means no live pending entry matches the phone.
	ErrNotFound = errors.New("correlation: no pending entry")
	// ErrStale means the inbound event is timestamped before the send it
	// would correlate to. The entry is kept; the real reply may still come.
	ErrStale = errors.New("correlation: event predates send")
)

// Pending is an open expectation that a reply to an outbound send arrives
// before ExpireAt. Lead is nil for passive conversations.
type Pending struct {
	Phone    string
	Lead     *leads.Record
	SentAt   time.Time
	ExpireAt time.Time
}

// Store holds at most one pending entry per phone. A new send for the same
// phone overwrites the previous expectation.
type Store struct {
	mu      sync.Mutex
	entries map[string]Pending

	window   time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *logging.Logger
}

// NewStore creates a store whose entries expire window after registration.
func NewStore(window time.Duration, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		entries:  make(map[string]Pending),
		window:   window,
		interval: 30 * time.Second,
		now:      time.Now,
		logger:   logger,
	}
}

// WithSweepInterval overrides how often Run sweeps expired entries.
func (s *Store) WithSweepInterval(d time.Duration) *Store {
	if d > 0 {
		s.interval = d
	}
	return s
}

// WithClock overrides the time source. Tests use this to advance past the
// monitoring window without sleeping.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Register records an outbound send awaiting a reply, overwriting any
// previous expectation for the same phone.
func (s *Store) Register(canonical string, lead *leads.Record) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[canonical] = Pending{
		Phone:    canonical,
		Lead:     lead,
		SentAt:   now,
		ExpireAt: now.Add(s.window),
	}
}

// Resolve looks up a pending entry for the phone, trying its variant forms
// as well, since providers re-normalize numbers on the return path. An
// expired entry is deleted on observation and reported as not found. An
// event timestamped before the send returns ErrStale without touching the
// entry; a zero eventTime skips the staleness check.
func (s *Store) Resolve(canonical string, eventTime time.Time) (Pending, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range phone.Variants(canonical) {
		entry, ok := s.entries[v]
		if !ok {
			continue
		}
		if now.After(entry.ExpireAt) {
			delete(s.entries, v)
			return Pending{}, ErrNotFound
		}
		if !eventTime.IsZero() && eventTime.Before(entry.SentAt) {
			return Pending{}, ErrStale
		}
		return entry, nil
	}
	return Pending{}, ErrNotFound
}

// Release drops the pending entry once a reply has been consumed,
// covering the variant forms the entry may have been registered under.
func (s *Store) Release(canonical string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range phone.Variants(canonical) {
		delete(s.entries, v)
	}
}

// Len reports how many sends are still awaiting a reply.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep deletes every entry expired at the given instant and returns how
// many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.ExpireAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries on a fixed interval until the context is
// cancelled, keeping memory bounded even with no inbound traffic.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(s.now()); removed > 0 {
				s.logger.Debug("swept expired correlations", "removed", removed)
			}
		}
	}
}
