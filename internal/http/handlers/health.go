package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dominusativos/captazap/pkg/logging"
)

// PendingCounter reports how many outbound sends still await a reply.
type PendingCounter interface {
	Len() int
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	pending PendingCounter
	logger  *logging.Logger
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(pending PendingCounter, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{pending: pending, logger: logger}
}

// Handle reports service health and the pending correlation count.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	pending := 0
	if h.pending != nil {
		pending = h.pending.Len()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"ok": true, "pending": pending}); err != nil {
		h.logger.Error("health response encode failed", "error", err)
	}
}
