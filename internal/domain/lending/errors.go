package lending

import (
	"fmt"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound         = shared.NewDomainError("LOAN_NOT_FOUND", "Loan account not found")
	ErrLoanNotActive        = shared.NewDomainError("LOAN_NOT_ACTIVE", "Loan account is not active")
	ErrInvalidAmount        = shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive with at most two decimals")
	ErrInvalidInstallments  = shared.NewDomainError("INVALID_INSTALLMENTS", "Installment count must be at least 1")
	ErrInvalidFrequency     = shared.NewDomainError("INVALID_FREQUENCY", "Unknown payment frequency")
	ErrInvalidPaymentKind   = shared.NewDomainError("INVALID_PAYMENT_KIND", "Unknown payment kind")
	ErrInvalidInterestRate  = shared.NewDomainError("INVALID_INTEREST_RATE", "Interest rate cannot be negative")
	ErrMissingReference     = shared.NewDomainError("MISSING_REFERENCE", "Borrower, route and collector are required")
	ErrDuplicatePayment     = shared.NewDomainError("DUPLICATE_PAYMENT", "A payment with the same amount was already registered today")
	ErrLoanHasPayments      = shared.NewDomainError("LOAN_HAS_PAYMENTS", "Loan account already has payments")
	ErrStatusChangeRejected = shared.NewDomainError("INVALID_STATE", "Loan status change not allowed")
)

// DuplicatePaymentWarning is returned instead of applying a payment that
// looks like a resubmission. The caller may retry with the override flag.
type DuplicatePaymentWarning struct {
	ExistingPaymentID uuid.UUID
	Amount            decimal.Decimal
	PaidAt            time.Time
}

func (w *DuplicatePaymentWarning) Error() string {
	return fmt.Sprintf("payment of %s already registered at %s (payment %s)",
		w.Amount.StringFixed(2), w.PaidAt.Format("15:04"), w.ExistingPaymentID)
}

// Unwrap exposes the DUPLICATE_PAYMENT domain error
func (w *DuplicatePaymentWarning) Unwrap() error {
	return ErrDuplicatePayment
}
