// Package metrics exposes prometheus instrumentation for the campaign and
// webhook flows. All observe methods are safe on a nil receiver so wiring
// metrics stays optional.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// CampaignMetrics counts outbound sends, inbound events and conversation
// transitions.
type CampaignMetrics struct {
	outboundTotal    *prometheus.CounterVec
	inboundTotal     *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	unreachableTotal prometheus.Counter
	notifyTotal      *prometheus.CounterVec
	webhookLatency   *prometheus.HistogramVec
}

func NewCampaignMetrics(reg prometheus.Registerer) *CampaignMetrics {
	m := &CampaignMetrics{
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "captazap",
			Subsystem: "campaign",
			Name:      "outbound_total",
			Help:      "Total outbound provider sends",
		}, []string{"kind", "status"}),
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "captazap",
			Subsystem: "webhook",
			Name:      "inbound_total",
			Help:      "Total inbound webhook message records",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "captazap",
			Subsystem: "conversation",
			Name:      "transitions_total",
			Help:      "Conversation state transitions",
		}, []string{"to"}),
		unreachableTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "captazap",
			Subsystem: "campaign",
			Name:      "unreachable_leads_total",
			Help:      "Leads whose every candidate phone failed",
		}),
		notifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "captazap",
			Subsystem: "notify",
			Name:      "admin_total",
			Help:      "Admin notifications attempted",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "captazap",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of webhook event processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outboundTotal, m.inboundTotal, m.transitionsTotal, m.unreachableTotal, m.notifyTotal, m.webhookLatency)
	return m
}

func (m *CampaignMetrics) ObserveOutbound(kind, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(kind, status).Inc()
}

func (m *CampaignMetrics) ObserveInbound(outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(outcome).Inc()
}

func (m *CampaignMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(to).Inc()
}

func (m *CampaignMetrics) ObserveUnreachableLead() {
	if m == nil {
		return
	}
	m.unreachableTotal.Inc()
}

func (m *CampaignMetrics) ObserveNotify(status string) {
	if m == nil {
		return
	}
	m.notifyTotal.WithLabelValues(status).Inc()
}

func (m *CampaignMetrics) ObserveWebhookLatency(eventType string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(eventType).Observe(seconds)
}
