package lending

import (
	"context"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LoanService handles disbursal, reads and status changes of loan accounts
type LoanService struct {
	scope          TransactionScope
	loans          lending.LoanAccountRepository
	payments       lending.PaymentRepository
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewLoanService creates a new LoanService
func NewLoanService(scope TransactionScope, loans lending.LoanAccountRepository, payments lending.PaymentRepository) *LoanService {
	return &LoanService{scope: scope, loans: loans, payments: payments, now: time.Now}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LoanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *LoanService) SetClock(now func() time.Time) {
	s.now = now
}

// Disburse creates a new ACTIVE loan account from the agreed terms
func (s *LoanService) Disburse(ctx context.Context, input DisburseLoanInput) (*lending.LoanAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LoanService", "Disburse",
		attribute.String("collector_id", input.CollectorID.String()),
		attribute.String("principal", input.Principal.String()),
	)
	defer span.End()

	now := s.now()
	terms := lending.DisbursalTerms{
		BorrowerID:   input.BorrowerID,
		RouteID:      input.RouteID,
		CollectorID:  input.CollectorID,
		Principal:    input.Principal,
		InterestRate: input.InterestRate,
		Installments: input.Installments,
		Frequency:    lending.Frequency(input.Frequency),
		Currency:     input.Currency,
	}
	if input.StartDate != nil {
		terms.StartDate = *input.StartDate
	}
	loan, err := lending.NewLoanAccount(terms, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Loans().Create(ctx, loan)
	}); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("loan disbursed",
		zap.String("loan_id", loan.ID.String()),
		zap.String("collector_id", loan.CollectorID.String()),
		zap.String("principal", loan.Principal.String()),
		zap.String("total_payable", loan.TotalPayable.String()),
		zap.String("currency", loan.Currency.String()))

	publishEvents(ctx, s.eventPublisher, loan)
	return loan, nil
}

// GetLoan returns a loan account or LOAN_NOT_FOUND
func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, lending.ErrLoanNotFound
	}
	return loan, nil
}

// ListLoans returns a page of loans and the total count
func (s *LoanService) ListLoans(ctx context.Context, filter lending.LoanFilter) ([]lending.LoanAccount, int64, error) {
	return s.loans.FindAll(ctx, filter)
}

// ListPayments returns the payments of a loan in the order they were made
func (s *LoanService) ListPayments(ctx context.Context, loanID uuid.UUID) ([]lending.Payment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	return s.payments.FindByLoan(ctx, loanID)
}

// Cancel voids a loan that has not received payments
func (s *LoanService) Cancel(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	return s.changeStatus(ctx, "Cancel", id, (*lending.LoanAccount).Cancel)
}

// MarkDefault flags an active loan as defaulted
func (s *LoanService) MarkDefault(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	return s.changeStatus(ctx, "MarkDefault", id, (*lending.LoanAccount).MarkDefault)
}

// Reactivate returns a defaulted loan to ACTIVE
func (s *LoanService) Reactivate(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	return s.changeStatus(ctx, "Reactivate", id, (*lending.LoanAccount).Reactivate)
}

func (s *LoanService) changeStatus(ctx context.Context, method string, id uuid.UUID, change func(*lending.LoanAccount, time.Time) error) (*lending.LoanAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LoanService", method, attribute.String("loan_id", id.String()))
	defer span.End()

	var loan *lending.LoanAccount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		loan, err = repos.Loans().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loan == nil {
			return lending.ErrLoanNotFound
		}
		if err := change(loan, s.now()); err != nil {
			return err
		}
		return repos.Loans().Save(ctx, loan)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("loan status changed",
		zap.String("loan_id", loan.ID.String()),
		zap.String("status", loan.Status.String()))

	publishEvents(ctx, s.eventPublisher, loan)
	return loan, nil
}
