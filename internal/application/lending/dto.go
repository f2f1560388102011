package lending

import (
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyPaymentInput carries a payment request from the caller.
// CollectorID defaults to the loan's collector and Now to the service clock.
type ApplyPaymentInput struct {
	LoanID            uuid.UUID
	CollectorID       uuid.UUID
	Amount            decimal.Decimal
	Kind              lending.PaymentKind
	Installments      int
	OverrideDuplicate bool
	Notes             string
	Now               time.Time
}

// DisburseLoanInput carries the terms of a new loan
type DisburseLoanInput struct {
	BorrowerID   uuid.UUID       `json:"borrower_id" binding:"required"`
	RouteID      uuid.UUID       `json:"route_id" binding:"required"`
	CollectorID  uuid.UUID       `json:"collector_id" binding:"required"`
	Principal    decimal.Decimal `json:"principal" binding:"required"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Installments int             `json:"installments" binding:"required,min=1"`
	Frequency    string          `json:"frequency" binding:"required"`
	Currency     string          `json:"currency" binding:"required,len=3"`
	StartDate    *time.Time      `json:"start_date"`
}

// LoanResponse is the loan account as returned to API clients
type LoanResponse struct {
	ID                  uuid.UUID       `json:"id"`
	BorrowerID          uuid.UUID       `json:"borrower_id"`
	RouteID             uuid.UUID       `json:"route_id"`
	CollectorID         uuid.UUID       `json:"collector_id"`
	Principal           decimal.Decimal `json:"principal"`
	InterestRate        decimal.Decimal `json:"interest_rate"`
	TotalPayable        decimal.Decimal `json:"total_payable"`
	Outstanding         decimal.Decimal `json:"outstanding"`
	InstallmentValue    decimal.Decimal `json:"installment_value"`
	Currency            string          `json:"currency"`
	Frequency           string          `json:"frequency"`
	InstallmentsTotal   int             `json:"installments_total"`
	InstallmentsPaid    int             `json:"installments_paid"`
	InstallmentsOverdue int             `json:"installments_overdue"`
	Status              string          `json:"status"`
	StartDate           time.Time       `json:"start_date"`
	EstimatedEndDate    time.Time       `json:"estimated_end_date"`
	LastPaymentDate     *time.Time      `json:"last_payment_date,omitempty"`
	Version             int             `json:"version"`
}

// ToLoanResponse converts a domain loan account to its response
func ToLoanResponse(l *lending.LoanAccount) LoanResponse {
	return LoanResponse{
		ID:                  l.ID,
		BorrowerID:          l.BorrowerID,
		RouteID:             l.RouteID,
		CollectorID:         l.CollectorID,
		Principal:           l.Principal,
		InterestRate:        l.InterestRate,
		TotalPayable:        l.TotalPayable,
		Outstanding:         l.Outstanding,
		InstallmentValue:    l.InstallmentValue,
		Currency:            l.Currency.String(),
		Frequency:           l.Frequency.String(),
		InstallmentsTotal:   l.InstallmentsTotal,
		InstallmentsPaid:    l.InstallmentsPaid,
		InstallmentsOverdue: l.InstallmentsOverdue,
		Status:              l.Status.String(),
		StartDate:           l.StartDate,
		EstimatedEndDate:    l.EstimatedEndDate,
		LastPaymentDate:     l.LastPaymentDate,
		Version:             l.Version,
	}
}

// PaymentResponse is a payment as returned to API clients
type PaymentResponse struct {
	ID                  uuid.UUID       `json:"id"`
	LoanID              uuid.UUID       `json:"loan_id"`
	CollectorID         uuid.UUID       `json:"collector_id"`
	Amount              decimal.Decimal `json:"amount"`
	InstallmentsCovered int             `json:"installments_covered"`
	BalanceBefore       decimal.Decimal `json:"balance_before"`
	BalanceAfter        decimal.Decimal `json:"balance_after"`
	PaidAt              time.Time       `json:"paid_at"`
	Kind                string          `json:"kind"`
	Notes               string          `json:"notes,omitempty"`
}

// ToPaymentResponse converts a domain payment to its response
func ToPaymentResponse(p *lending.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                  p.ID,
		LoanID:              p.LoanID,
		CollectorID:         p.CollectorID,
		Amount:              p.Amount,
		InstallmentsCovered: p.InstallmentsCovered,
		BalanceBefore:       p.BalanceBefore,
		BalanceAfter:        p.BalanceAfter,
		PaidAt:              p.PaidAt,
		Kind:                string(p.Kind),
		Notes:               p.Notes,
	}
}

// ToPaymentResponses converts a list of payments
func ToPaymentResponses(payments []lending.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// OverdueSweepResult summarises one overdue recalculation run
type OverdueSweepResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	// Skipped counts loans that changed between the read and the write
	Skipped int `json:"skipped"`
}
