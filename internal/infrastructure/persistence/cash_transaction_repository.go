package persistence

import (
	"context"
	"errors"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements treasury.TransferRepository over the
// TRANSFER rows of cash_transactions
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Create inserts a transfer
func (r *GormTransferRepository) Create(ctx context.Context, transfer *treasury.Transfer) error {
	return r.db.WithContext(ctx).Create(models.CashTransactionModelFromTransfer(transfer)).Error
}

// FindByID finds a transfer by its ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Transfer, error) {
	var model models.CashTransactionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND nature = ?", id, string(treasury.NatureTransfer)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToTransfer(), nil
}

// FindAll returns a page of transfers, newest first, and the total count
func (r *GormTransferRepository) FindAll(ctx context.Context, filter treasury.TransferFilter) ([]treasury.Transfer, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CashTransactionModel{}).
		Where("nature = ?", string(treasury.NatureTransfer))
	if filter.UserID != nil {
		query = query.Where("(origin_user_id = ? OR destination_user_id = ?)", *filter.UserID, *filter.UserID)
	}
	if filter.RouteID != nil {
		query = query.Where("(origin_route_id = ? OR destination_route_id = ?)", *filter.RouteID, *filter.RouteID)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", filter.Currency.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.CashTransactionModel
	if err := query.Order("occurred_at DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	transfers := make([]treasury.Transfer, len(rows))
	for i := range rows {
		transfers[i] = *rows[i].ToTransfer()
	}
	return transfers, total, nil
}

// GormLedgerTransactionRepository implements treasury.LedgerTransactionRepository
// over the INCOME and EXPENSE rows of cash_transactions
type GormLedgerTransactionRepository struct {
	db *gorm.DB
}

// NewGormLedgerTransactionRepository creates a new GormLedgerTransactionRepository
func NewGormLedgerTransactionRepository(db *gorm.DB) *GormLedgerTransactionRepository {
	return &GormLedgerTransactionRepository{db: db}
}

// Create inserts an income or expense row
func (r *GormLedgerTransactionRepository) Create(ctx context.Context, tx *treasury.LedgerTransaction) error {
	return r.db.WithContext(ctx).Create(models.CashTransactionModelFromLedger(tx)).Error
}

// FindByUser returns a page of a user's income and expense rows, newest first
func (r *GormLedgerTransactionRepository) FindByUser(ctx context.Context, userID uuid.UUID, page shared.Page) ([]treasury.LedgerTransaction, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CashTransactionModel{}).
		Where("origin_user_id = ? AND nature IN ?", userID,
			[]string{string(treasury.NatureIncome), string(treasury.NatureExpense)})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.CashTransactionModel
	if err := query.Order("occurred_at DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]treasury.LedgerTransaction, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToLedgerTransaction()
	}
	return entries, total, nil
}

// Ensure the repositories implement the domain interfaces
var (
	_ treasury.TransferRepository          = (*GormTransferRepository)(nil)
	_ treasury.LedgerTransactionRepository = (*GormLedgerTransactionRepository)(nil)
)
