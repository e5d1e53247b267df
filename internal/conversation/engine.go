// Package conversation advances the per-phone dialogue state machine and
// decides which outbound action follows each inbound reply.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dominusativos/captazap/internal/correlation"
	"github.com/dominusativos/captazap/internal/intent"
	"github.com/dominusativos/captazap/internal/leads"
	"github.com/dominusativos/captazap/internal/observability/metrics"
	"github.com/dominusativos/captazap/internal/phone"
	"github.com/dominusativos/captazap/pkg/logging"
)

// Messenger sends a free-text message through the provider.
type Messenger interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Notification carries the reply summary forwarded to the operator.
type Notification struct {
	LeadName string
	Phone    string
	CaseRef  string
	Reply    string
}

// AdminNotifier forwards a reply summary to the operator. Implementations
// must swallow their own failures; a notification must never affect the
// lead's conversation state.
type AdminNotifier interface {
	ReplyReceived(ctx context.Context, n Notification)
}

// InboundMessage is one inbound reply after payload extraction.
type InboundMessage struct {
	From      string
	Body      string
	Timestamp time.Time
}

const defaultDetailsMinLength = 10

// Config wires an Engine.
type Config struct {
	Messenger    Messenger
	Notifier     AdminNotifier
	Correlations *correlation.Store
	Registry     *leads.Registry
	Script       Script
	Logger       *logging.Logger
	Metrics      *metrics.CampaignMetrics
	// DetailsMinLength is the minimum rune count for a free-text reply to
	// count as submitted case details.
	DetailsMinLength int
}

// Engine owns the conversation state map. Each phone has its own lock, so
// the check-state-then-transition section is atomic per phone while
// different phones proceed in parallel.
type Engine struct {
	messenger    Messenger
	notifier     AdminNotifier
	correlations *correlation.Store
	registry     *leads.Registry
	script       Script
	logger       *logging.Logger
	metrics      *metrics.CampaignMetrics
	detailsMin   int

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu         sync.Mutex
	state      State
	lastIntent intent.Intent
}

// NewEngine creates an engine. Correlations and Registry are required;
// Script falls back to DefaultScript when zero.
func NewEngine(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Script == (Script{}) {
		cfg.Script = DefaultScript()
	}
	if cfg.DetailsMinLength <= 0 {
		cfg.DetailsMinLength = defaultDetailsMinLength
	}
	return &Engine{
		messenger:    cfg.Messenger,
		notifier:     cfg.Notifier,
		correlations: cfg.Correlations,
		registry:     cfg.Registry,
		script:       cfg.Script,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		detailsMin:   cfg.DetailsMinLength,
		entries:      make(map[string]*entry),
	}
}

// BeginOutbound records that the campaign issued the initial send for the
// phone: the conversation enters awaiting-confirmation and a pending
// correlation opens. Called by the scheduler after a successful send.
func (e *Engine) BeginOutbound(canonical string, lead *leads.Record) {
	ent := e.entryFor(canonical)
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.state == StateNew {
		ent.state = StateAwaitingConfirmation
		e.metrics.ObserveTransition(ent.state.String())
	}
	e.correlations.Register(canonical, lead)
}

// HandleInbound runs one inbound reply through the state machine. It is
// safe to call concurrently for any mix of phones.
func (e *Engine) HandleInbound(ctx context.Context, msg InboundMessage) error {
	canonical := phone.Normalize(msg.From)
	if canonical == "" {
		e.logger.Debug("inbound event without usable sender, dropped")
		e.metrics.ObserveInbound("dropped")
		return nil
	}

	ent := e.entryFor(canonical)
	ent.mu.Lock()
	defer ent.mu.Unlock()

	pending, err := e.correlations.Resolve(canonical, msg.Timestamp)
	if errors.Is(err, correlation.ErrStale) {
		e.logger.Debug("out-of-order echo ignored", "phone", canonical)
		e.metrics.ObserveInbound("stale")
		return nil
	}

	if ent.state == StateNew {
		// Passive lead: greet before classifying anything.
		e.send(ctx, canonical, e.script.Introduction)
		e.correlations.Register(canonical, nil)
		ent.state = StateAwaitingConfirmation
		e.metrics.ObserveTransition(ent.state.String())
	}

	lead, hasLead := e.registry.Lookup(canonical)
	if !hasLead && err == nil && pending.Lead != nil {
		lead, hasLead = pending.Lead, true
	}

	iv := intent.Classify(msg.Body)
	ent.lastIntent = iv
	e.metrics.ObserveInbound(iv.String())

	switch ent.state {
	case StateAwaitingConfirmation:
		e.handleConfirmation(ctx, ent, canonical, iv, lead, hasLead, msg.Body)
	case StateAwaitingDetails:
		e.handleDetails(ctx, ent, canonical, iv, lead, msg.Body)
	case StateFinalized:
		e.send(ctx, canonical, e.script.AlreadyRegistered)
	}
	return nil
}

func (e *Engine) handleConfirmation(ctx context.Context, ent *entry, canonical string, iv intent.Intent, lead *leads.Record, hasLead bool, body string) {
	switch {
	case iv == intent.Affirmative && hasLead:
		e.send(ctx, canonical, e.script.Acceptance)
		e.notify(ctx, lead, canonical, body)
		e.finalize(ent, canonical)
	case iv == intent.Affirmative:
		e.send(ctx, canonical, e.script.DetailsRequest)
		ent.state = StateAwaitingDetails
		e.metrics.ObserveTransition(ent.state.String())
	case iv == intent.Negative:
		e.send(ctx, canonical, e.script.Closing)
		e.notify(ctx, lead, canonical, body)
		e.finalize(ent, canonical)
	default:
		e.send(ctx, canonical, e.script.Clarification)
	}
}

func (e *Engine) handleDetails(ctx context.Context, ent *entry, canonical string, iv intent.Intent, lead *leads.Record, body string) {
	trimmed := strings.TrimSpace(body)
	if iv == intent.Unrecognized && len([]rune(trimmed)) >= e.detailsMin {
		e.send(ctx, canonical, e.script.DetailsThanks)
		e.notify(ctx, lead, canonical, trimmed)
		e.finalize(ent, canonical)
		return
	}
	e.send(ctx, canonical, e.script.DetailsRepeat)
}

func (e *Engine) finalize(ent *entry, canonical string) {
	ent.state = StateFinalized
	e.metrics.ObserveTransition(ent.state.String())
	e.correlations.Release(canonical)
}

func (e *Engine) send(ctx context.Context, to, body string) {
	if e.messenger == nil {
		return
	}
	if _, err := e.messenger.SendText(ctx, to, body); err != nil {
		e.logger.Warn("reply send failed", "phone", to, "error", err)
		e.metrics.ObserveOutbound("text", "error")
		return
	}
	e.metrics.ObserveOutbound("text", "ok")
}

func (e *Engine) notify(ctx context.Context, lead *leads.Record, canonical, reply string) {
	if e.notifier == nil {
		return
	}
	n := Notification{Phone: canonical, Reply: reply}
	if lead != nil {
		n.LeadName = lead.DisplayName
		n.CaseRef = lead.CaseRef
	}
	e.notifier.ReplyReceived(ctx, n)
}

// entryFor returns the state entry for the phone, matching variant forms
// before creating a fresh one so the two representations of a subscriber
// share a single conversation.
func (e *Engine) entryFor(canonical string) *entry {
	e.mu.RLock()
	for _, v := range phone.Variants(canonical) {
		if ent, ok := e.entries[v]; ok {
			e.mu.RUnlock()
			return ent
		}
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range phone.Variants(canonical) {
		if ent, ok := e.entries[v]; ok {
			return ent
		}
	}
	ent := &entry{state: StateNew}
	e.entries[canonical] = ent
	return ent
}

// StateOf reports the conversation state for a canonical phone. The bool
// is false for phones never seen.
func (e *Engine) StateOf(canonical string) (State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, v := range phone.Variants(canonical) {
		if ent, ok := e.entries[v]; ok {
			ent.mu.Lock()
			s := ent.state
			ent.mu.Unlock()
			return s, true
		}
	}
	return StateNew, false
}

// LastIntent reports the most recent classified intent for a phone.
func (e *Engine) LastIntent(canonical string) (intent.Intent, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, v := range phone.Variants(canonical) {
		if ent, ok := e.entries[v]; ok {
			ent.mu.Lock()
			iv := ent.lastIntent
			ent.mu.Unlock()
			return iv, true
		}
	}
	return intent.Unrecognized, false
}
