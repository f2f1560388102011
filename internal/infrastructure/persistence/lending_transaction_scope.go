package persistence

import (
	"context"

	applending "github.com/fieldcredit/backend/internal/application/lending"
	"github.com/fieldcredit/backend/internal/domain/lending"
	"gorm.io/gorm"
)

// GormLendingTransactionScope implements lending TransactionScope using GORM transactions
type GormLendingTransactionScope struct {
	db *gorm.DB
}

// NewGormLendingTransactionScope creates a new GormLendingTransactionScope
func NewGormLendingTransactionScope(db *gorm.DB) *GormLendingTransactionScope {
	return &GormLendingTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormLendingTransactionScope) Execute(ctx context.Context, fn func(repos applending.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLendingRepositories{tx: tx})
	})
}

type gormLendingRepositories struct {
	tx *gorm.DB
}

func (r *gormLendingRepositories) Loans() lending.LoanAccountRepository {
	return NewGormLoanAccountRepository(r.tx)
}

func (r *gormLendingRepositories) Payments() lending.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

var (
	_ applending.TransactionScope          = (*GormLendingTransactionScope)(nil)
	_ applending.TransactionalRepositories = (*gormLendingRepositories)(nil)
)
