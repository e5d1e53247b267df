// Package campaign drives the initial outbound pass over the contact
// list: one template send per lead, walking candidate phones on failure,
// with a randomized pause between leads to stay under provider
// bulk-messaging limits.
package campaign

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dominusativos/captazap/internal/leads"
	"github.com/dominusativos/captazap/internal/messaging"
	"github.com/dominusativos/captazap/internal/observability/metrics"
	"github.com/dominusativos/captazap/internal/phone"
	"github.com/dominusativos/captazap/pkg/logging"
)

// TemplateSender sends the approved opening template.
type TemplateSender interface {
	SendTemplate(ctx context.Context, to string, tpl messaging.Template) (string, error)
}

type conversationStarter interface {
	BeginOutbound(canonical string, lead *leads.Record)
}

// Config wires a Scheduler.
type Config struct {
	Sender   TemplateSender
	Engine   conversationStarter
	Registry *leads.Registry
	// Template is the opening message; the lead's first name is appended
	// as its single body parameter.
	Template messaging.Template
	// DelayMin/DelayMax bound the uniform random pause between leads.
	DelayMin time.Duration
	DelayMax time.Duration
	Logger   *logging.Logger
	Metrics  *metrics.CampaignMetrics
	// Validate rejects candidate numbers before a send is attempted.
	// Defaults to phone.IsValid.
	Validate func(canonical string) bool
}

// Scheduler performs the sequential campaign run.
type Scheduler struct {
	sender   TemplateSender
	engine   conversationStarter
	registry *leads.Registry
	template messaging.Template
	delayMin time.Duration
	delayMax time.Duration
	logger   *logging.Logger
	metrics  *metrics.CampaignMetrics
	validate func(string) bool
}

// NewScheduler creates a scheduler.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Validate == nil {
		cfg.Validate = phone.IsValid
	}
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin
	}
	return &Scheduler{
		sender:   cfg.Sender,
		engine:   cfg.Engine,
		registry: cfg.Registry,
		template: cfg.Template,
		delayMin: cfg.DelayMin,
		delayMax: cfg.DelayMax,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		validate: cfg.Validate,
	}
}

// Run sends the opening template to every lead in order. A lead whose
// candidates all fail is logged and skipped; the run only stops when the
// context is cancelled or the list ends.
func (s *Scheduler) Run(ctx context.Context, records []*leads.Record) {
	s.logger.Info("campaign run starting", "leads", len(records))
	for _, rec := range records {
		if ctx.Err() != nil {
			s.logger.Info("campaign run cancelled")
			return
		}
		if !s.sendToLead(ctx, rec) {
			s.logger.Warn("lead unreachable, skipping", "lead", rec.DisplayName)
			s.metrics.ObserveUnreachableLead()
		}
		if !s.pause(ctx) {
			s.logger.Info("campaign run cancelled")
			return
		}
	}
	s.logger.Info("campaign run finished")
}

func (s *Scheduler) sendToLead(ctx context.Context, rec *leads.Record) bool {
	candidate := rec.ActivePhone()
	for candidate != "" {
		if !s.validate(candidate) {
			s.logger.Debug("candidate number invalid", "lead", rec.DisplayName, "phone", candidate)
			candidate = s.advance(rec, candidate)
			continue
		}
		tpl := s.template
		tpl.Params = append([]string{}, rec.FirstName())
		if _, err := s.sender.SendTemplate(ctx, candidate, tpl); err != nil {
			s.logger.Warn("template send failed", "lead", rec.DisplayName, "phone", candidate, "error", err)
			s.metrics.ObserveOutbound("template", "error")
			candidate = s.advance(rec, candidate)
			continue
		}
		s.metrics.ObserveOutbound("template", "ok")
		s.engine.BeginOutbound(candidate, rec)
		return true
	}
	return false
}

func (s *Scheduler) advance(rec *leads.Record, failed string) string {
	next, err := s.registry.AdvanceCandidate(rec, failed)
	if err != nil {
		return ""
	}
	return next
}

// pause waits the randomized inter-send delay, returning false when the
// context is cancelled first.
func (s *Scheduler) pause(ctx context.Context) bool {
	d := s.delayMin
	if spread := s.delayMax - s.delayMin; spread > 0 {
		d += time.Duration(rand.Int64N(int64(spread) + 1))
	}
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
