package lending

import (
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeLoanAccount = "LoanAccount"

	EventTypeLoanDisbursed    = "LoanDisbursed"
	EventTypePaymentApplied   = "PaymentApplied"
	EventTypeLoanPaidOff      = "LoanPaidOff"
	EventTypeLoanStatusChange = "LoanStatusChanged"
)

// LoanDisbursedEvent is raised when a loan account is created
type LoanDisbursedEvent struct {
	shared.BaseDomainEvent
	CollectorID  uuid.UUID       `json:"collector_id"`
	Principal    decimal.Decimal `json:"principal"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	Currency     string          `json:"currency"`
}

// NewLoanDisbursedEvent creates a LoanDisbursedEvent
func NewLoanDisbursedEvent(l *LoanAccount) *LoanDisbursedEvent {
	return &LoanDisbursedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanDisbursed, AggregateTypeLoanAccount, l.ID, l.CreatedAt),
		CollectorID:     l.CollectorID,
		Principal:       l.Principal,
		TotalPayable:    l.TotalPayable,
		Currency:        l.Currency.String(),
	}
}

// PaymentAppliedEvent is raised for every accepted payment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID           uuid.UUID       `json:"payment_id"`
	CollectorID         uuid.UUID       `json:"collector_id"`
	Amount              decimal.Decimal `json:"amount"`
	InstallmentsCovered int             `json:"installments_covered"`
	BalanceAfter        decimal.Decimal `json:"balance_after"`
}

// NewPaymentAppliedEvent creates a PaymentAppliedEvent
func NewPaymentAppliedEvent(l *LoanAccount, p *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeLoanAccount, l.ID, p.PaidAt),
		PaymentID:           p.ID,
		CollectorID:         p.CollectorID,
		Amount:              p.Amount,
		InstallmentsCovered: p.InstallmentsCovered,
		BalanceAfter:        p.BalanceAfter,
	}
}

// LoanPaidOffEvent is raised when the outstanding balance reaches zero
type LoanPaidOffEvent struct {
	shared.BaseDomainEvent
	FinalPaymentID uuid.UUID `json:"final_payment_id"`
}

// NewLoanPaidOffEvent creates a LoanPaidOffEvent
func NewLoanPaidOffEvent(l *LoanAccount, p *Payment) *LoanPaidOffEvent {
	return &LoanPaidOffEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanPaidOff, AggregateTypeLoanAccount, l.ID, p.PaidAt),
		FinalPaymentID:  p.ID,
	}
}

// LoanStatusChangedEvent is raised on manual cancellation or default
type LoanStatusChangedEvent struct {
	shared.BaseDomainEvent
	From LoanStatus `json:"from"`
	To   LoanStatus `json:"to"`
}

// NewLoanStatusChangedEvent creates a LoanStatusChangedEvent
func NewLoanStatusChangedEvent(l *LoanAccount, from LoanStatus) *LoanStatusChangedEvent {
	return &LoanStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanStatusChange, AggregateTypeLoanAccount, l.ID, l.UpdatedAt),
		From:            from,
		To:              l.Status,
	}
}
