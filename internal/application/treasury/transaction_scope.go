package treasury

import (
	"context"

	"github.com/fieldcredit/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to treasury repositories.
// All repository operations inside Execute commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the treasury repositories bound to one
// transaction. The collector ledger reader runs inside the same transaction
// so a projected balance sees the rows the transaction has written so far.
type TransactionalRepositories interface {
	OwnerCashBoxes() treasury.OwnerCashBoxRepository
	RouteCashBoxes() treasury.RouteCashBoxRepository
	Transfers() treasury.TransferRepository
	LedgerTransactions() treasury.LedgerTransactionRepository
	CollectorLedger() treasury.CollectorLedgerReader
	Directory() treasury.Directory
}

// Repositories bundles non-transactional treasury repositories
type Repositories struct {
	OwnerCashBoxes     treasury.OwnerCashBoxRepository
	RouteCashBoxes     treasury.RouteCashBoxRepository
	Transfers          treasury.TransferRepository
	LedgerTransactions treasury.LedgerTransactionRepository
	CollectorLedger    treasury.CollectorLedgerReader
	Directory          treasury.Directory
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Useful for tests with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OwnerCashBoxes() treasury.OwnerCashBoxRepository {
	return s.repos.OwnerCashBoxes
}

func (s *NoOpTransactionScope) RouteCashBoxes() treasury.RouteCashBoxRepository {
	return s.repos.RouteCashBoxes
}

func (s *NoOpTransactionScope) Transfers() treasury.TransferRepository {
	return s.repos.Transfers
}

func (s *NoOpTransactionScope) LedgerTransactions() treasury.LedgerTransactionRepository {
	return s.repos.LedgerTransactions
}

func (s *NoOpTransactionScope) CollectorLedger() treasury.CollectorLedgerReader {
	return s.repos.CollectorLedger
}

func (s *NoOpTransactionScope) Directory() treasury.Directory {
	return s.repos.Directory
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
