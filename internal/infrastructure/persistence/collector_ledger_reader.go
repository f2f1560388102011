package persistence

import (
	"context"
	"fmt"

	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCollectorLedgerReader sums a collector's history straight from the
// payments, loan_accounts and cash_transactions tables. Nothing is cached.
type GormCollectorLedgerReader struct {
	db *gorm.DB
}

// NewGormCollectorLedgerReader creates a new GormCollectorLedgerReader
func NewGormCollectorLedgerReader(db *gorm.DB) *GormCollectorLedgerReader {
	return &GormCollectorLedgerReader{db: db}
}

type sumResult struct {
	Total decimal.Decimal
}

// CollectorLedger returns the five historical sums for a collector
func (r *GormCollectorLedgerReader) CollectorLedger(ctx context.Context, collectorID uuid.UUID, currency valueobject.Currency) (treasury.CollectorLedger, error) {
	ledger := treasury.CollectorLedger{CollectorID: collectorID, Currency: currency}
	db := r.db.WithContext(ctx)

	collections := db.Table("payments").
		Joins("JOIN loan_accounts ON loan_accounts.id = payments.loan_id").
		Where("payments.collector_id = ?", collectorID)
	if currency != "" {
		collections = collections.Where("loan_accounts.currency = ?", currency.String())
	}
	if err := sum(collections, "payments.amount", &ledger.Collections); err != nil {
		return ledger, fmt.Errorf("sum collections: %w", err)
	}

	disbursed := db.Model(&models.LoanAccountModel{}).Where("collector_id = ?", collectorID)
	if currency != "" {
		disbursed = disbursed.Where("currency = ?", currency.String())
	}
	if err := sum(disbursed, "principal", &ledger.LoansDisbursed); err != nil {
		return ledger, fmt.Errorf("sum loans disbursed: %w", err)
	}

	cash := func() *gorm.DB {
		q := db.Model(&models.CashTransactionModel{})
		if currency != "" {
			q = q.Where("currency = ?", currency.String())
		}
		return q
	}

	received := cash().Where("nature = ? AND destination_kind = ? AND destination_user_id = ?",
		string(treasury.NatureTransfer), treasury.EndpointCollector.String(), collectorID)
	if err := sum(received, "amount", &ledger.TransfersReceived); err != nil {
		return ledger, fmt.Errorf("sum transfers received: %w", err)
	}

	sent := cash().Where("nature = ? AND origin_kind = ? AND origin_user_id = ?",
		string(treasury.NatureTransfer), treasury.EndpointCollector.String(), collectorID)
	if err := sum(sent, "amount", &ledger.TransfersSent); err != nil {
		return ledger, fmt.Errorf("sum transfers sent: %w", err)
	}

	expenses := cash().Where("nature = ? AND origin_user_id = ?", string(treasury.NatureExpense), collectorID)
	if err := sum(expenses, "amount", &ledger.Expenses); err != nil {
		return ledger, fmt.Errorf("sum expenses: %w", err)
	}

	return ledger, nil
}

func sum(query *gorm.DB, column string, into *decimal.Decimal) error {
	var result sumResult
	if err := query.Select(fmt.Sprintf("COALESCE(SUM(%s), 0) AS total", column)).Scan(&result).Error; err != nil {
		return err
	}
	*into = result.Total
	return nil
}

var _ treasury.CollectorLedgerReader = (*GormCollectorLedgerReader)(nil)
