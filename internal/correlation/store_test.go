package correlation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominusativos/captazap/internal/leads"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(window time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(window, nil).WithClock(clock.Now), clock
}

func TestRegisterResolve(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	lead := &leads.Record{ID: "1", DisplayName: "Maria"}
	s.Register("5561999112233", lead)

	tests := []struct {
		name  string
		query string
	}{
		{"exact phone", "5561999112233"},
		{"twelve-digit variant", "556199112233"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(tt.query, clock.Now())
			require.NoError(t, err)
			assert.Same(t, lead, got.Lead)
			assert.Equal(t, "5561999112233", got.Phone)
		})
	}

	_, err := s.Resolve("5511987654321", clock.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveExpired(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Register("5561999112233", nil)

	clock.Advance(time.Hour + time.Second)
	_, err := s.Resolve("5561999112233", clock.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len(), "expired entry must be deleted on observation")
}

func TestResolveStale(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Register("5561999112233", nil)

	before := clock.Now().Add(-time.Minute)
	_, err := s.Resolve("5561999112233", before)
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, 1, s.Len(), "stale events must not delete the entry")

	// The real reply can still correlate afterwards.
	_, err = s.Resolve("5561999112233", clock.Now().Add(time.Minute))
	assert.NoError(t, err)
}

func TestResolveZeroEventTimeSkipsStalenessCheck(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	s.Register("5561999112233", nil)

	_, err := s.Resolve("5561999112233", time.Time{})
	assert.NoError(t, err)
}

func TestRegisterOverwrites(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Register("5561999112233", nil)
	first, err := s.Resolve("5561999112233", clock.Now())
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	s.Register("5561999112233", nil)
	second, err := s.Resolve("5561999112233", clock.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, s.Len())
	assert.True(t, second.SentAt.After(first.SentAt))
}

func TestRelease(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Register("5561999112233", nil)

	// Releasing through a variant form must still clear the entry.
	s.Release("556199112233")
	_, err := s.Resolve("5561999112233", clock.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Register("5561999112233", nil)
	s.Register("5511987654321", nil)
	clock.Advance(30 * time.Minute)
	s.Register("5521912345678", nil)

	clock.Advance(45 * time.Minute)
	removed := s.Sweep(clock.Now())
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Len())
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := NewStore(time.Millisecond, nil).WithClock(clock.Now).WithSweepInterval(5 * time.Millisecond)
	s.Register("5561999112233", nil)
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
