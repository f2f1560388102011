package lending

import (
	"context"
	"errors"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentService applies collected payments to loan accounts
type PaymentService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	now            func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope) *PaymentService {
	return &PaymentService{scope: scope, now: time.Now}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the counters updated per payment
func (s *PaymentService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// SetClock overrides the time source
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// ApplyPayment records a payment against a loan. The loan row is locked,
// the duplicate guard checked, the loan updated and the payment inserted in
// one transaction. A suspected resubmission returns a
// *lending.DuplicatePaymentWarning and changes nothing.
func (s *PaymentService) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*lending.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "ApplyPayment",
		attribute.String("loan_id", input.LoanID.String()),
		attribute.String("amount", input.Amount.String()),
		attribute.Bool("override_duplicate", input.OverrideDuplicate),
	)
	defer span.End()

	if !valueobject.IsValidAmount(input.Amount) {
		telemetry.RecordError(span, lending.ErrInvalidAmount)
		return nil, lending.ErrInvalidAmount
	}
	now := input.Now
	if now.IsZero() {
		now = s.now()
	}

	var (
		loan    *lending.LoanAccount
		payment *lending.Payment
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		loan, err = repos.Loans().FindByIDForUpdate(ctx, input.LoanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return lending.ErrLoanNotFound
		}
		if !loan.Status.CanApplyPayment() {
			return lending.ErrLoanNotActive
		}

		if !input.OverrideDuplicate {
			existing, err := repos.Payments().FindSameDay(ctx, loan.ID, input.Amount, now)
			if err != nil {
				return err
			}
			if existing != nil {
				return &lending.DuplicatePaymentWarning{
					ExistingPaymentID: existing.ID,
					Amount:            existing.Amount,
					PaidAt:            existing.PaidAt,
				}
			}
		}

		payment, err = loan.ApplyPayment(lending.PaymentRequest{
			CollectorID:  input.CollectorID,
			Amount:       input.Amount,
			Kind:         input.Kind,
			Installments: input.Installments,
			Notes:        input.Notes,
		}, now)
		if err != nil {
			return err
		}
		if err := repos.Loans().Save(ctx, loan); err != nil {
			return err
		}
		return repos.Payments().Create(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		var warning *lending.DuplicatePaymentWarning
		if errors.As(err, &warning) {
			s.metrics.RecordDuplicateWarning(ctx)
			logger.L(ctx).Info("duplicate payment suspected",
				zap.String("loan_id", input.LoanID.String()),
				zap.String("existing_payment_id", warning.ExistingPaymentID.String()),
				zap.String("amount", input.Amount.String()))
		} else {
			logger.L(ctx).Warn("payment rejected",
				zap.String("loan_id", input.LoanID.String()),
				zap.String("amount", input.Amount.String()),
				zap.Error(err))
		}
		return nil, err
	}

	logger.L(ctx).Info("payment applied",
		zap.String("loan_id", loan.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.Int("installments_covered", payment.InstallmentsCovered),
		zap.String("balance_after", payment.BalanceAfter.String()),
		zap.String("status", loan.Status.String()))

	s.metrics.RecordPaymentApplied(ctx, string(payment.Kind), loan.Currency.String())
	publishEvents(ctx, s.eventPublisher, loan)
	return payment, nil
}

// publishEvents publishes and clears the pending events of a loan.
// Publication errors are logged by the event bus, not propagated.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, loan *lending.LoanAccount) {
	if publisher == nil {
		return
	}
	events := loan.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, events...)
	loan.ClearDomainEvents()
}
