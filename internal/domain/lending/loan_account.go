package lending

import (
	"fmt"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan account
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCancelled LoanStatus = "CANCELLED"
	LoanStatusPaid      LoanStatus = "PAID"
	LoanStatusDefault   LoanStatus = "DEFAULT"
)

// IsValid checks if the status is known
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusCancelled, LoanStatusPaid, LoanStatusDefault:
		return true
	}
	return false
}

// String returns the string representation of LoanStatus
func (s LoanStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further state change is possible
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusPaid || s == LoanStatusCancelled
}

// CanApplyPayment returns true if payments are accepted in this status
func (s LoanStatus) CanApplyPayment() bool {
	return s == LoanStatusActive
}

var hundred = decimal.NewFromInt(100)

// LoanAccount is the financial record of one credit agreement.
// Outstanding stays within [0, TotalPayable]; zero outstanding means PAID.
type LoanAccount struct {
	shared.BaseAggregateRoot
	BorrowerID          uuid.UUID
	RouteID             uuid.UUID
	CollectorID         uuid.UUID
	Principal           decimal.Decimal
	InterestRate        decimal.Decimal // percent over the whole term
	TotalPayable        decimal.Decimal
	Outstanding         decimal.Decimal
	InstallmentValue    decimal.Decimal
	Currency            valueobject.Currency
	Frequency           Frequency
	InstallmentsTotal   int
	InstallmentsPaid    int
	InstallmentsOverdue int
	Status              LoanStatus
	StartDate           time.Time
	EstimatedEndDate    time.Time
	LastPaymentDate     *time.Time
}

// DisbursalTerms are the agreed terms of a new loan
type DisbursalTerms struct {
	BorrowerID   uuid.UUID
	RouteID      uuid.UUID
	CollectorID  uuid.UUID
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	Installments int
	Frequency    Frequency
	Currency     string
	StartDate    time.Time
}

// NewLoanAccount disburses a loan. The total payable is fixed here as
// principal * (1 + rate/100) and never accrues afterwards.
func NewLoanAccount(terms DisbursalTerms, now time.Time) (*LoanAccount, error) {
	if terms.BorrowerID == uuid.Nil || terms.RouteID == uuid.Nil || terms.CollectorID == uuid.Nil {
		return nil, ErrMissingReference
	}
	if !valueobject.IsValidAmount(terms.Principal) {
		return nil, ErrInvalidAmount
	}
	if terms.InterestRate.IsNegative() {
		return nil, ErrInvalidInterestRate
	}
	if terms.Installments < 1 {
		return nil, ErrInvalidInstallments
	}
	if !terms.Frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}
	currency, err := valueobject.NewCurrency(terms.Currency)
	if err != nil {
		return nil, err
	}
	start := terms.StartDate
	if start.IsZero() {
		start = now
	}
	start = StartOfDay(start)

	total := terms.Principal.Mul(decimal.NewFromInt(1).Add(terms.InterestRate.Div(hundred))).Round(valueobject.MoneyScale)
	installment := total.Div(decimal.NewFromInt(int64(terms.Installments))).Round(valueobject.MoneyScale)

	loan := &LoanAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		BorrowerID:        terms.BorrowerID,
		RouteID:           terms.RouteID,
		CollectorID:       terms.CollectorID,
		Principal:         terms.Principal,
		InterestRate:      terms.InterestRate,
		TotalPayable:      total,
		Outstanding:       total,
		InstallmentValue:  installment,
		Currency:          currency,
		Frequency:         terms.Frequency,
		InstallmentsTotal: terms.Installments,
		Status:            LoanStatusActive,
		StartDate:         start,
		EstimatedEndDate:  terms.Frequency.EstimatedEndDate(start, terms.Installments),
	}
	loan.AddDomainEvent(NewLoanDisbursedEvent(loan))
	return loan, nil
}

// RemainingInstallments returns the installments not yet paid, never negative
func (l *LoanAccount) RemainingInstallments() int {
	if r := l.InstallmentsTotal - l.InstallmentsPaid; r > 0 {
		return r
	}
	return 0
}

// PaymentRequest describes a payment to apply
type PaymentRequest struct {
	CollectorID  uuid.UUID // defaults to the loan's collector
	Amount       decimal.Decimal
	Kind         PaymentKind // defaults to NORMAL
	Installments int         // explicit count for MULTIPLE
	Notes        string
}

// CoveredInstallments computes how many installments req pays for
func (l *LoanAccount) CoveredInstallments(req PaymentRequest) (int, error) {
	switch req.Kind {
	case PaymentKindFull:
		return l.RemainingInstallments(), nil
	case PaymentKindMultiple:
		if req.Installments < 1 {
			return 0, ErrInvalidInstallments
		}
		return req.Installments, nil
	}
	if !l.InstallmentValue.IsPositive() {
		return 1, nil
	}
	covered := int(req.Amount.Div(l.InstallmentValue).Floor().IntPart())
	if covered == 0 {
		covered = 1
	}
	return covered, nil
}

// ApplyPayment records a payment against the loan and returns the new
// Payment. Overpayment is absorbed: the balance floors at zero.
func (l *LoanAccount) ApplyPayment(req PaymentRequest, now time.Time) (*Payment, error) {
	if !l.Status.CanApplyPayment() {
		return nil, ErrLoanNotActive.WithMessage(fmt.Sprintf("Loan account is %s, payments are not accepted", l.Status))
	}
	if !valueobject.IsValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	if req.Kind == "" {
		req.Kind = PaymentKindNormal
	}
	if !req.Kind.IsValid() {
		return nil, ErrInvalidPaymentKind
	}
	covered, err := l.CoveredInstallments(req)
	if err != nil {
		return nil, err
	}
	collector := req.CollectorID
	if collector == uuid.Nil {
		collector = l.CollectorID
	}

	before := l.Outstanding
	after := decimal.Max(decimal.Zero, before.Sub(req.Amount))

	payment := &Payment{
		BaseEntity:          shared.NewBaseEntity(now),
		LoanID:              l.ID,
		CollectorID:         collector,
		Amount:              req.Amount,
		InstallmentsCovered: covered,
		BalanceBefore:       before,
		BalanceAfter:        after,
		PaidAt:              now,
		Kind:                req.Kind,
		Notes:               req.Notes,
	}

	paidAt := now
	l.Outstanding = after
	l.InstallmentsPaid += covered
	l.InstallmentsOverdue = max(0, l.InstallmentsOverdue-covered)
	l.LastPaymentDate = &paidAt
	l.AddDomainEvent(NewPaymentAppliedEvent(l, payment))

	if !after.IsPositive() {
		l.Status = LoanStatusPaid
		l.AddDomainEvent(NewLoanPaidOffEvent(l, payment))
	}

	l.Touch(now)
	l.IncrementVersion()
	return payment, nil
}

// ExpectedOverdue computes the overdue counter for today from elapsed days
// since the last payment (or the start date), capped at the installments
// still owed.
func (l *LoanAccount) ExpectedOverdue(today time.Time) int {
	anchor := l.StartDate
	if l.LastPaymentDate != nil {
		anchor = *l.LastPaymentDate
	}
	days := DaysBetween(anchor, today)
	if days < 0 {
		days = 0
	}
	expected := days / l.Frequency.DaysPerInstallment()
	overdue := max(0, expected-l.InstallmentsPaid)
	return min(overdue, l.RemainingInstallments())
}

// RecalculateOverdue refreshes the overdue counter of an active loan and
// reports whether it changed.
func (l *LoanAccount) RecalculateOverdue(today time.Time) bool {
	if l.Status != LoanStatusActive {
		return false
	}
	next := l.ExpectedOverdue(today)
	if next == l.InstallmentsOverdue {
		return false
	}
	l.InstallmentsOverdue = next
	return true
}

// Cancel voids a loan that has not received any payment
func (l *LoanAccount) Cancel(now time.Time) error {
	if l.Status != LoanStatusActive {
		return ErrStatusChangeRejected.WithMessage(fmt.Sprintf("Cannot cancel loan in %s status", l.Status))
	}
	if l.InstallmentsPaid > 0 || !l.Outstanding.Equal(l.TotalPayable) {
		return ErrLoanHasPayments
	}
	l.changeStatus(LoanStatusCancelled, now)
	return nil
}

// MarkDefault flags an active loan as defaulted. Defaulted loans stop
// accepting payments through the processor.
func (l *LoanAccount) MarkDefault(now time.Time) error {
	if l.Status != LoanStatusActive {
		return ErrStatusChangeRejected.WithMessage(fmt.Sprintf("Cannot default loan in %s status", l.Status))
	}
	l.changeStatus(LoanStatusDefault, now)
	return nil
}

// Reactivate returns a defaulted loan to ACTIVE
func (l *LoanAccount) Reactivate(now time.Time) error {
	if l.Status != LoanStatusDefault {
		return ErrStatusChangeRejected.WithMessage(fmt.Sprintf("Cannot reactivate loan in %s status", l.Status))
	}
	l.changeStatus(LoanStatusActive, now)
	return nil
}

func (l *LoanAccount) changeStatus(to LoanStatus, now time.Time) {
	from := l.Status
	l.Status = to
	l.Touch(now)
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanStatusChangedEvent(l, from))
}
