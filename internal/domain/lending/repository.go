package lending

import (
	"context"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanFilter narrows a loan listing
type LoanFilter struct {
	RouteID     *uuid.UUID
	CollectorID *uuid.UUID
	Status      LoanStatus
	Page        shared.Page
}

// LoanAccountRepository persists loan accounts.
// Finders return (nil, nil) when the loan does not exist.
type LoanAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LoanAccount, error)
	// FindByIDForUpdate loads the loan holding a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*LoanAccount, error)
	// FindActiveAfter returns up to limit ACTIVE loans with id > after, ordered by id.
	FindActiveAfter(ctx context.Context, after uuid.UUID, limit int) ([]LoanAccount, error)
	FindAll(ctx context.Context, filter LoanFilter) ([]LoanAccount, int64, error)
	Create(ctx context.Context, loan *LoanAccount) error
	Save(ctx context.Context, loan *LoanAccount) error
	// UpdateOverdue writes only the overdue counter, and only while the loan
	// is still ACTIVE at the given version. It reports false when a payment
	// or status change got there first.
	UpdateOverdue(ctx context.Context, id uuid.UUID, version, overdue int) (bool, error)
}

// PaymentRepository persists payments. Payments are append-only.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByLoan(ctx context.Context, loanID uuid.UUID) ([]Payment, error)
	// FindSameDay returns a payment on loanID for amount on the calendar
	// day of at, or nil.
	FindSameDay(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, at time.Time) (*Payment, error)
}
