package treasury

import (
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectorLedger holds the historical sums that make up a collector's
// cash on hand. Currency is empty when the sums span all currencies.
type CollectorLedger struct {
	CollectorID       uuid.UUID            `json:"collector_id"`
	Currency          valueobject.Currency `json:"currency,omitempty"`
	Collections       decimal.Decimal      `json:"collections"`
	TransfersReceived decimal.Decimal      `json:"transfers_received"`
	Expenses          decimal.Decimal      `json:"expenses"`
	LoansDisbursed    decimal.Decimal      `json:"loans_disbursed"`
	TransfersSent     decimal.Decimal      `json:"transfers_sent"`
}

// Balance is collections + transfers received - expenses - loans disbursed
// - transfers sent. It can be negative.
func (l CollectorLedger) Balance() decimal.Decimal {
	return l.Collections.
		Add(l.TransfersReceived).
		Sub(l.Expenses).
		Sub(l.LoansDisbursed).
		Sub(l.TransfersSent)
}
