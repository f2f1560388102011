package lending

import (
	"context"

	"github.com/fieldcredit/backend/internal/domain/lending"
)

// TransactionScope provides transactional access to lending repositories.
// All repository operations inside Execute commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the lending repositories bound to one
// transaction. Loans is the aggregate root repository; Payments is append-only.
type TransactionalRepositories interface {
	Loans() lending.LoanAccountRepository
	Payments() lending.PaymentRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Useful for tests with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	loans    lending.LoanAccountRepository
	payments lending.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(loans lending.LoanAccountRepository, payments lending.PaymentRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{loans: loans, payments: payments}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Loans returns the loan account repository
func (s *NoOpTransactionScope) Loans() lending.LoanAccountRepository {
	return s.loans
}

// Payments returns the payment repository
func (s *NoOpTransactionScope) Payments() lending.PaymentRepository {
	return s.payments
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
