package leads

import (
	"sync"

	"github.com/dominusativos/captazap/internal/phone"
)

// Registry maps canonical phone numbers (and their ninth-digit variants)
// to lead records. Records are registered once at campaign load time and
// never removed during a run.
type Registry struct {
	mu      sync.RWMutex
	index   map[string]*Record
	records []*Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Record)}
}

// Register indexes every candidate phone of the record, including the
// variant forms, so inbound lookups succeed no matter which representation
// the provider reports.
func (g *Registry) Register(rec *Record) {
	if rec == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, rec)
	for _, p := range rec.Phones {
		for _, v := range phone.Variants(p) {
			g.index[v] = rec
		}
	}
}

// Lookup finds the record owning the given canonical phone, trying the
// number itself and then each of its variants.
func (g *Registry) Lookup(canonical string) (*Record, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, v := range phone.Variants(canonical) {
		if rec, ok := g.index[v]; ok {
			return rec, true
		}
	}
	return nil, false
}

// AdvanceCandidate moves the record past failedPhone and returns the next
// untried candidate. ErrExhausted is returned once the list runs out.
func (g *Registry) AdvanceCandidate(rec *Record, failedPhone string) (string, error) {
	if rec == nil {
		return "", ErrExhausted
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for rec.activeIndex < len(rec.Phones) {
		rec.activeIndex++
		if rec.activeIndex >= len(rec.Phones) {
			break
		}
		next := rec.Phones[rec.activeIndex]
		if next != failedPhone {
			return next, nil
		}
	}
	return "", ErrExhausted
}

// Records returns every registered record in registration order.
func (g *Registry) Records() []*Record {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Record, len(g.records))
	copy(out, g.records)
	return out
}
