// Package handlers carries the HTTP boundary: the Meta webhook (handshake
// verification and event ingestion) and the health endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dominusativos/captazap/internal/conversation"
	"github.com/dominusativos/captazap/internal/observability/metrics"
	"github.com/dominusativos/captazap/pkg/logging"
)

// unsupportedBody stands in for message sub-types the flow cannot read
// (audio, stickers, locations, ...). It classifies as unrecognized and
// triggers the clarification prompt.
const unsupportedBody = "[mensagem não suportada]"

const defaultEventTimeout = 30 * time.Second

// Ingester consumes extracted inbound messages.
type Ingester interface {
	HandleInbound(ctx context.Context, msg conversation.InboundMessage) error
}

// WebhookHandler terminates the Meta webhook.
type WebhookHandler struct {
	ingester     Ingester
	verifyToken  string
	logger       *logging.Logger
	metrics      *metrics.CampaignMetrics
	eventTimeout time.Duration
}

// WebhookConfig wires a WebhookHandler.
type WebhookConfig struct {
	Ingester     Ingester
	VerifyToken  string
	Logger       *logging.Logger
	Metrics      *metrics.CampaignMetrics
	EventTimeout time.Duration
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(cfg WebhookConfig) *WebhookHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = defaultEventTimeout
	}
	return &WebhookHandler{
		ingester:     cfg.Ingester,
		verifyToken:  cfg.VerifyToken,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		eventTimeout: cfg.EventTimeout,
	}
}

// HandleVerify answers Meta's subscription handshake: echo the challenge
// when the verify token matches, 403 otherwise.
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && h.verifyToken != "" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value changeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type changeValue struct {
	Messages []inboundRecord `json:"messages"`
	Statuses []statusRecord  `json:"statuses"`
}

type inboundRecord struct {
	From      string `json:"from"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Button *struct {
		Text string `json:"text"`
	} `json:"button"`
	Interactive *struct {
		ButtonReply *struct {
			Title string `json:"title"`
		} `json:"button_reply"`
		ListReply *struct {
			Title string `json:"title"`
		} `json:"list_reply"`
	} `json:"interactive"`
}

type statusRecord struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
	Errors      []struct {
		Code  int    `json:"code"`
		Title string `json:"title"`
	} `json:"errors"`
}

// HandleEvents ingests webhook deliveries. Partial or malformed payloads
// are never fatal: whatever can be extracted is processed and the
// provider always gets a 200 so it does not retry forever.
func (h *WebhookHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("webhook payload not decodable", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			h.logStatuses(change.Value.Statuses)
			for _, rec := range change.Value.Messages {
				h.dispatch(rec)
			}
		}
	}

	h.metrics.ObserveWebhookLatency("events", time.Since(start).Seconds())
	w.WriteHeader(http.StatusOK)
}

// dispatch hands one message record to the engine on its own goroutine.
// Webhook deliveries batch unrelated phones, so each record is an
// independent task; ordering per phone is the engine's concern.
func (h *WebhookHandler) dispatch(rec inboundRecord) {
	if h.ingester == nil {
		return
	}
	msg := conversation.InboundMessage{
		From:      rec.From,
		Body:      extractBody(rec),
		Timestamp: parseTimestamp(rec.Timestamp),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.eventTimeout)
		defer cancel()
		if err := h.ingester.HandleInbound(ctx, msg); err != nil {
			h.logger.Error("inbound event handling failed", "from", msg.From, "error", err)
		}
	}()
}

func (h *WebhookHandler) logStatuses(statuses []statusRecord) {
	for _, st := range statuses {
		h.logger.Info("delivery status",
			"id", st.ID,
			"status", st.Status,
			"recipient", st.RecipientID,
			"errors", len(st.Errors),
		)
	}
}

// extractBody picks the reply text out of whichever sub-type is present:
// plain text, then button reply, then interactive button/list reply.
func extractBody(rec inboundRecord) string {
	switch {
	case rec.Text != nil:
		return rec.Text.Body
	case rec.Button != nil:
		return rec.Button.Text
	case rec.Interactive != nil && rec.Interactive.ButtonReply != nil:
		return rec.Interactive.ButtonReply.Title
	case rec.Interactive != nil && rec.Interactive.ListReply != nil:
		return rec.Interactive.ListReply.Title
	case rec.Type != "" && rec.Type != "text":
		return unsupportedBody
	default:
		return ""
	}
}

func parseTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
