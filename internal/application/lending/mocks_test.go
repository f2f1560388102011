package lending

import (
	"context"
	"sync"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.EventType()
	}
	return types
}

// MockLoanAccountRepository is a mock implementation of lending.LoanAccountRepository
type MockLoanAccountRepository struct {
	mock.Mock
}

func (m *MockLoanAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.LoanAccount), args.Error(1)
}

func (m *MockLoanAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.LoanAccount), args.Error(1)
}

func (m *MockLoanAccountRepository) FindActiveAfter(ctx context.Context, after uuid.UUID, limit int) ([]lending.LoanAccount, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lending.LoanAccount), args.Error(1)
}

func (m *MockLoanAccountRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.LoanAccount, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]lending.LoanAccount), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanAccountRepository) Create(ctx context.Context, loan *lending.LoanAccount) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanAccountRepository) Save(ctx context.Context, loan *lending.LoanAccount) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanAccountRepository) UpdateOverdue(ctx context.Context, id uuid.UUID, version, overdue int) (bool, error) {
	args := m.Called(ctx, id, version, overdue)
	return args.Bool(0), args.Error(1)
}

// MockPaymentRepository is a mock implementation of lending.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *lending.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]lending.Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lending.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindSameDay(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, at time.Time) (*lending.Payment, error) {
	args := m.Called(ctx, loanID, amount, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Payment), args.Error(1)
}

var (
	_ lending.LoanAccountRepository = (*MockLoanAccountRepository)(nil)
	_ lending.PaymentRepository     = (*MockPaymentRepository)(nil)
)
