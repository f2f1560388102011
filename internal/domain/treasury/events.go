package treasury

import (
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeTransfer = "Transfer"
	AggregateTypeCashBox  = "CashBox"

	EventTypeTransferExecuted   = "TransferExecuted"
	EventTypeCashBoxProvisioned = "CashBoxProvisioned"
)

// TransferExecutedEvent is raised once a transfer commits
type TransferExecutedEvent struct {
	shared.BaseDomainEvent
	Concept      string          `json:"concept"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	AuthorizedBy uuid.UUID       `json:"authorized_by"`
}

// NewTransferExecutedEvent creates a TransferExecutedEvent
func NewTransferExecutedEvent(t *Transfer) *TransferExecutedEvent {
	return &TransferExecutedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferExecuted, AggregateTypeTransfer, t.ID, t.OccurredAt),
		Concept:         t.Concept,
		Amount:          t.Amount,
		Currency:        t.Currency.String(),
		AuthorizedBy:    t.AuthorizedBy,
	}
}

// CashBoxProvisionedEvent is raised when the registry creates an empty box
type CashBoxProvisionedEvent struct {
	shared.BaseDomainEvent
	Kind     EndpointKind `json:"kind"`
	HolderID uuid.UUID    `json:"holder_id"`
	Currency string       `json:"currency"`
}

// NewOwnerCashBoxProvisionedEvent creates a CashBoxProvisionedEvent for an owner box
func NewOwnerCashBoxProvisionedEvent(b *OwnerCashBox) *CashBoxProvisionedEvent {
	return &CashBoxProvisionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashBoxProvisioned, AggregateTypeCashBox, b.ID, b.CreatedAt),
		Kind:            EndpointOwner,
		HolderID:        b.OwnerID,
		Currency:        b.Currency.String(),
	}
}

// NewRouteCashBoxProvisionedEvent creates a CashBoxProvisionedEvent for a route box
func NewRouteCashBoxProvisionedEvent(b *RouteCashBox) *CashBoxProvisionedEvent {
	return &CashBoxProvisionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashBoxProvisioned, AggregateTypeCashBox, b.ID, b.CreatedAt),
		Kind:            EndpointRoute,
		HolderID:        b.RouteID,
		Currency:        b.Currency.String(),
	}
}
