package event

import (
	"context"

	"github.com/franchise/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerAuditHandler writes every ledger event to the structured log.
// It subscribes as a wildcard handler so new event types are picked up
// without registration changes.
type LedgerAuditHandler struct {
	logger *zap.Logger
}

// NewLedgerAuditHandler creates a new LedgerAuditHandler
func NewLedgerAuditHandler(logger *zap.Logger) *LedgerAuditHandler {
	return &LedgerAuditHandler{logger: logger.Named("ledger_audit")}
}

// Handle logs the event with its aggregate identity
func (h *LedgerAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("ledger event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *LedgerAuditHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*LedgerAuditHandler)(nil)
