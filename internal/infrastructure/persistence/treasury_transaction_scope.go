package persistence

import (
	"context"

	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTreasuryTransactionScope implements treasury TransactionScope using GORM transactions
type GormTreasuryTransactionScope struct {
	db *gorm.DB
}

// NewGormTreasuryTransactionScope creates a new GormTreasuryTransactionScope
func NewGormTreasuryTransactionScope(db *gorm.DB) *GormTreasuryTransactionScope {
	return &GormTreasuryTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTreasuryTransactionScope) Execute(ctx context.Context, fn func(repos apptreasury.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTreasuryRepositories{tx: tx})
	})
}

type gormTreasuryRepositories struct {
	tx *gorm.DB
}

func (r *gormTreasuryRepositories) OwnerCashBoxes() treasury.OwnerCashBoxRepository {
	return NewGormOwnerCashBoxRepository(r.tx)
}

func (r *gormTreasuryRepositories) RouteCashBoxes() treasury.RouteCashBoxRepository {
	return NewGormRouteCashBoxRepository(r.tx)
}

func (r *gormTreasuryRepositories) Transfers() treasury.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

func (r *gormTreasuryRepositories) LedgerTransactions() treasury.LedgerTransactionRepository {
	return NewGormLedgerTransactionRepository(r.tx)
}

func (r *gormTreasuryRepositories) CollectorLedger() treasury.CollectorLedgerReader {
	return NewGormCollectorLedgerReader(r.tx)
}

func (r *gormTreasuryRepositories) Directory() treasury.Directory {
	return NewGormDirectory(r.tx)
}

// TreasuryRepositories returns non-transactional treasury repositories over db
func TreasuryRepositories(db *gorm.DB) apptreasury.Repositories {
	return apptreasury.Repositories{
		OwnerCashBoxes:     NewGormOwnerCashBoxRepository(db),
		RouteCashBoxes:     NewGormRouteCashBoxRepository(db),
		Transfers:          NewGormTransferRepository(db),
		LedgerTransactions: NewGormLedgerTransactionRepository(db),
		CollectorLedger:    NewGormCollectorLedgerReader(db),
		Directory:          NewGormDirectory(db),
	}
}

var (
	_ apptreasury.TransactionScope          = (*GormTreasuryTransactionScope)(nil)
	_ apptreasury.TransactionalRepositories = (*gormTreasuryRepositories)(nil)
)
