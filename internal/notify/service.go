// Package notify forwards reply summaries to the campaign operator's
// WhatsApp number.
package notify

import (
	"context"
	"fmt"

	"github.com/dominusativos/captazap/internal/conversation"
	"github.com/dominusativos/captazap/internal/observability/metrics"
	"github.com/dominusativos/captazap/pkg/logging"
)

// Service sends admin notifications through the messaging provider.
// Failures are logged and swallowed: losing a notification must never
// affect the lead's own conversation.
type Service struct {
	messenger  conversation.Messenger
	adminPhone string
	logger     *logging.Logger
	metrics    *metrics.CampaignMetrics
}

// NewService creates a notifier targeting the fixed operator phone. A
// service without messenger or phone is valid and does nothing.
func NewService(messenger conversation.Messenger, adminPhone string, logger *logging.Logger, m *metrics.CampaignMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		messenger:  messenger,
		adminPhone: adminPhone,
		logger:     logger,
		metrics:    m,
	}
}

// ReplyReceived sends the operator a summary of a classified reply.
func (s *Service) ReplyReceived(ctx context.Context, n conversation.Notification) {
	if s.messenger == nil || s.adminPhone == "" {
		s.logger.Debug("admin notifications not configured, skipping")
		return
	}
	if _, err := s.messenger.SendText(ctx, s.adminPhone, formatReply(n)); err != nil {
		s.logger.Warn("admin notification failed", "phone", n.Phone, "error", err)
		s.metrics.ObserveNotify("error")
		return
	}
	s.metrics.ObserveNotify("ok")
}

func formatReply(n conversation.Notification) string {
	name := n.LeadName
	if name == "" {
		name = "(desconhecido)"
	}
	caseRef := n.CaseRef
	if caseRef == "" {
		caseRef = "(não informado)"
	}
	return fmt.Sprintf(
		"Resposta recebida\n• Cliente: %s\n• Número: %s\n• Processo: %s\n• Resposta: %s",
		name, n.Phone, caseRef, n.Reply,
	)
}
