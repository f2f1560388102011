package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var fixedNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

// activeLoan returns a loan of total 120000 in 20 installments of 6000
func activeLoan(t *testing.T) *lending.LoanAccount {
	t.Helper()
	loan, err := lending.NewLoanAccount(lending.DisbursalTerms{
		BorrowerID:   uuid.New(),
		RouteID:      uuid.New(),
		CollectorID:  uuid.New(),
		Principal:    decimal.NewFromInt(100000),
		InterestRate: decimal.NewFromInt(20),
		Installments: 20,
		Frequency:    lending.FrequencyDaily,
		Currency:     "COP",
		StartDate:    fixedNow.AddDate(0, 0, -10),
	}, fixedNow.AddDate(0, 0, -10))
	require.NoError(t, err)
	loan.ClearDomainEvents()
	return loan
}

type paymentFixture struct {
	loans     *MockLoanAccountRepository
	payments  *MockPaymentRepository
	publisher *MockEventPublisher
	service   *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		loans:     new(MockLoanAccountRepository),
		payments:  new(MockPaymentRepository),
		publisher: &MockEventPublisher{},
	}
	f.service = NewPaymentService(NewNoOpTransactionScope(f.loans, f.payments))
	f.service.SetEventPublisher(f.publisher)
	f.service.SetClock(func() time.Time { return fixedNow })
	return f
}

func TestPaymentService_ApplyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("applies normal payment", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)
		amount := decimal.NewFromInt(6000)

		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		f.payments.On("FindSameDay", mock.Anything, loan.ID, amount, fixedNow).Return(nil, nil)
		f.loans.On("Save", mock.Anything, loan).Return(nil)
		f.payments.On("Create", mock.Anything, mock.AnythingOfType("*lending.Payment")).Return(nil)

		payment, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: amount})
		require.NoError(t, err)
		assert.Equal(t, 1, payment.InstallmentsCovered)
		assert.True(t, decimal.NewFromInt(120000).Equal(payment.BalanceBefore))
		assert.True(t, decimal.NewFromInt(114000).Equal(payment.BalanceAfter))
		assert.Equal(t, loan.CollectorID, payment.CollectorID)
		assert.Equal(t, []string{lending.EventTypePaymentApplied}, f.publisher.EventTypes())
		assert.Empty(t, loan.GetDomainEvents())

		f.loans.AssertExpectations(t)
		f.payments.AssertExpectations(t)
	})

	t.Run("final payment pays off the loan", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)
		loan.Outstanding = decimal.NewFromInt(6000)
		loan.InstallmentsPaid = 19

		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		f.payments.On("FindSameDay", mock.Anything, loan.ID, mock.Anything, mock.Anything).Return(nil, nil)
		f.loans.On("Save", mock.Anything, loan).Return(nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)

		payment, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: decimal.NewFromInt(6000)})
		require.NoError(t, err)
		assert.True(t, payment.BalanceAfter.IsZero())
		assert.Equal(t, lending.LoanStatusPaid, loan.Status)
		assert.Equal(t, []string{lending.EventTypePaymentApplied, lending.EventTypeLoanPaidOff}, f.publisher.EventTypes())
	})

	t.Run("duplicate warning has no side effects", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)
		amount := decimal.NewFromInt(6000)
		existing := &lending.Payment{LoanID: loan.ID, Amount: amount, PaidAt: fixedNow.Add(-time.Hour)}
		existing.ID = uuid.New()

		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		f.payments.On("FindSameDay", mock.Anything, loan.ID, amount, fixedNow).Return(existing, nil)

		payment, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: amount})
		assert.Nil(t, payment)
		var warning *lending.DuplicatePaymentWarning
		require.ErrorAs(t, err, &warning)
		assert.Equal(t, existing.ID, warning.ExistingPaymentID)
		assert.ErrorIs(t, err, lending.ErrDuplicatePayment)
		assert.True(t, decimal.NewFromInt(120000).Equal(loan.Outstanding))
		assert.Empty(t, f.publisher.EventTypes())

		f.loans.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("override skips the duplicate guard", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)

		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		f.loans.On("Save", mock.Anything, loan).Return(nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{
			LoanID: loan.ID, Amount: decimal.NewFromInt(6000), OverrideDuplicate: true,
		})
		require.NoError(t, err)
		f.payments.AssertNotCalled(t, "FindSameDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects non-positive amount before touching storage", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: uuid.New(), Amount: decimal.Zero})
		assert.ErrorIs(t, err, lending.ErrInvalidAmount)
		f.loans.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("rejects amount finer than a cent", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: uuid.New(), Amount: decimal.RequireFromString("100.005")})
		assert.ErrorIs(t, err, lending.ErrInvalidAmount)
		f.loans.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("unknown loan", func(t *testing.T) {
		f := newPaymentFixture()
		id := uuid.New()
		f.loans.On("FindByIDForUpdate", mock.Anything, id).Return(nil, nil)

		_, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: id, Amount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, lending.ErrLoanNotFound)
	})

	t.Run("paid loan rejects payments", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)
		loan.Status = lending.LoanStatusPaid
		loan.Outstanding = decimal.Zero
		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)

		_, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, lending.ErrLoanNotActive)
		f.payments.AssertNotCalled(t, "FindSameDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)
		boom := errors.New("insert failed")

		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		f.payments.On("FindSameDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		f.loans.On("Save", mock.Anything, loan).Return(nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(boom)

		_, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: decimal.NewFromInt(6000)})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.publisher.EventTypes())
	})

	t.Run("uses explicit timestamp and collector", func(t *testing.T) {
		f := newPaymentFixture()
		loan := activeLoan(t)
		at := fixedNow.Add(-2 * time.Hour)
		collector := uuid.New()

		f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		f.payments.On("FindSameDay", mock.Anything, loan.ID, mock.Anything, at).Return(nil, nil)
		f.loans.On("Save", mock.Anything, loan).Return(nil)
		f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)

		payment, err := f.service.ApplyPayment(ctx, ApplyPaymentInput{
			LoanID: loan.ID, CollectorID: collector, Amount: decimal.NewFromInt(18000), Now: at,
		})
		require.NoError(t, err)
		assert.Equal(t, at, payment.PaidAt)
		assert.Equal(t, collector, payment.CollectorID)
		assert.Equal(t, 3, payment.InstallmentsCovered)
	})
}

func TestPaymentService_DomainErrorCodes(t *testing.T) {
	var de *shared.DomainError
	require.ErrorAs(t, error(&lending.DuplicatePaymentWarning{}), &de)
	assert.Equal(t, "DUPLICATE_PAYMENT", de.Code)
}

func TestPaymentService_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := telemetry.NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	f := newPaymentFixture()
	f.service.SetMetrics(metrics)
	loan := activeLoan(t)
	amount := decimal.NewFromInt(6000)
	existing := &lending.Payment{LoanID: loan.ID, Amount: amount, PaidAt: fixedNow}
	existing.ID = uuid.New()

	f.loans.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
	f.payments.On("FindSameDay", mock.Anything, loan.ID, amount, fixedNow).Return(nil, nil).Once()
	f.payments.On("FindSameDay", mock.Anything, loan.ID, amount, fixedNow).Return(existing, nil).Once()
	f.loans.On("Save", mock.Anything, loan).Return(nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*lending.Payment")).Return(nil)

	_, err = f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: amount})
	require.NoError(t, err)
	_, err = f.service.ApplyPayment(ctx, ApplyPaymentInput{LoanID: loan.ID, Amount: amount})
	require.ErrorIs(t, err, lending.ErrDuplicatePayment)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.EqualValues(t, 1, sumCounter(rm, "fieldcredit_payments_applied_total"))
	assert.EqualValues(t, 1, sumCounter(rm, "fieldcredit_payment_duplicate_warnings_total"))
}

func sumCounter(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
