package event

import (
	"context"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per money-moving domain
// event. The "audit" logger name lets operators route these lines to a
// separate sink.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(base *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: base.Named("audit")}
}

// EventTypes returns the audited event types
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		lending.EventTypeLoanDisbursed,
		lending.EventTypePaymentApplied,
		lending.EventTypeLoanPaidOff,
		lending.EventTypeLoanStatusChange,
		treasury.EventTypeTransferExecuted,
		treasury.EventTypeCashBoxProvisioned,
	}
}

// Handle logs the event with its type-specific fields
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	fields = append(fields, eventFields(event)...)
	if id := logger.RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := logger.UserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	h.logger.Info("domain event", fields...)
	return nil
}

func eventFields(event shared.DomainEvent) []zap.Field {
	switch e := event.(type) {
	case *lending.LoanDisbursedEvent:
		return []zap.Field{
			zap.String("collector_id", e.CollectorID.String()),
			zap.String("principal", e.Principal.String()),
			zap.String("total_payable", e.TotalPayable.String()),
			zap.String("currency", e.Currency),
		}
	case *lending.PaymentAppliedEvent:
		return []zap.Field{
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("collector_id", e.CollectorID.String()),
			zap.String("amount", e.Amount.String()),
			zap.Int("installments_covered", e.InstallmentsCovered),
			zap.String("balance_after", e.BalanceAfter.String()),
		}
	case *lending.LoanPaidOffEvent:
		return []zap.Field{zap.String("final_payment_id", e.FinalPaymentID.String())}
	case *lending.LoanStatusChangedEvent:
		return []zap.Field{zap.String("from", string(e.From)), zap.String("to", string(e.To))}
	case *treasury.TransferExecutedEvent:
		return []zap.Field{
			zap.String("concept", e.Concept),
			zap.String("amount", e.Amount.String()),
			zap.String("currency", e.Currency),
			zap.String("authorized_by", e.AuthorizedBy.String()),
		}
	case *treasury.CashBoxProvisionedEvent:
		return []zap.Field{
			zap.String("kind", string(e.Kind)),
			zap.String("holder_id", e.HolderID.String()),
			zap.String("currency", e.Currency),
		}
	}
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
