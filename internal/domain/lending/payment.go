package lending

import (
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentKind tells the processor how to count covered installments
type PaymentKind string

const (
	PaymentKindNormal   PaymentKind = "NORMAL"
	PaymentKindPartial  PaymentKind = "PARTIAL"
	PaymentKindFull     PaymentKind = "FULL"
	PaymentKindMultiple PaymentKind = "MULTIPLE"
)

// IsValid checks if the payment kind is known
func (k PaymentKind) IsValid() bool {
	switch k {
	case PaymentKindNormal, PaymentKindPartial, PaymentKindFull, PaymentKindMultiple:
		return true
	}
	return false
}

// Payment is an immutable record of money received against a loan
type Payment struct {
	shared.BaseEntity
	LoanID              uuid.UUID
	CollectorID         uuid.UUID
	Amount              decimal.Decimal
	InstallmentsCovered int
	BalanceBefore       decimal.Decimal
	BalanceAfter        decimal.Decimal
	PaidAt              time.Time
	Kind                PaymentKind
	Notes               string
}

// Duplicates reports whether a new payment of amount at t would repeat p:
// same amount on the same calendar day.
func (p *Payment) Duplicates(amount decimal.Decimal, t time.Time) bool {
	return p.Amount.Equal(amount) && SameDay(p.PaidAt, t)
}
