package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoanAccountRepository implements lending.LoanAccountRepository using GORM
type GormLoanAccountRepository struct {
	db *gorm.DB
}

// NewGormLoanAccountRepository creates a new GormLoanAccountRepository
func NewGormLoanAccountRepository(db *gorm.DB) *GormLoanAccountRepository {
	return &GormLoanAccountRepository{db: db}
}

// FindByID finds a loan account by its ID
func (r *GormLoanAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a loan account and locks its row until the
// surrounding transaction ends
func (r *GormLoanAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormLoanAccountRepository) findOne(db *gorm.DB, id uuid.UUID) (*lending.LoanAccount, error) {
	var model models.LoanAccountModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveAfter returns up to limit ACTIVE loans ordered by id, starting
// after the given id. Pass uuid.Nil for the first page.
func (r *GormLoanAccountRepository) FindActiveAfter(ctx context.Context, after uuid.UUID, limit int) ([]lending.LoanAccount, error) {
	var rows []models.LoanAccountModel
	query := r.db.WithContext(ctx).
		Where("status = ?", lending.LoanStatusActive.String()).
		Order("id ASC").
		Limit(limit)
	if after != uuid.Nil {
		query = query.Where("id > ?", after)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return loansToDomain(rows), nil
}

// FindAll returns a page of loans matching the filter and the total count
func (r *GormLoanAccountRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.LoanAccount, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LoanAccountModel{})
	if filter.RouteID != nil {
		query = query.Where("route_id = ?", *filter.RouteID)
	}
	if filter.CollectorID != nil {
		query = query.Where("collector_id = ?", *filter.CollectorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.LoanAccountModel
	if err := query.Order("start_date DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loansToDomain(rows), total, nil
}

// Create inserts a new loan account
func (r *GormLoanAccountRepository) Create(ctx context.Context, loan *lending.LoanAccount) error {
	return r.db.WithContext(ctx).Create(models.LoanAccountModelFromDomain(loan)).Error
}

// Save writes the mutable financial fields of a loan account
func (r *GormLoanAccountRepository) Save(ctx context.Context, loan *lending.LoanAccount) error {
	result := r.db.WithContext(ctx).
		Model(&models.LoanAccountModel{}).
		Where("id = ?", loan.ID).
		Updates(map[string]any{
			"outstanding":          loan.Outstanding,
			"installments_paid":    loan.InstallmentsPaid,
			"installments_overdue": loan.InstallmentsOverdue,
			"status":               loan.Status.String(),
			"last_payment_date":    loan.LastPaymentDate,
			"version":              loan.Version,
			"updated_at":           loan.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lending.ErrLoanNotFound
	}
	return nil
}

// UpdateOverdue writes only the overdue counter, guarded by status and version
func (r *GormLoanAccountRepository) UpdateOverdue(ctx context.Context, id uuid.UUID, version, overdue int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LoanAccountModel{}).
		Where("id = ? AND status = ? AND version = ?", id, lending.LoanStatusActive.String(), version).
		Update("installments_overdue", overdue)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func loansToDomain(rows []models.LoanAccountModel) []lending.LoanAccount {
	loans := make([]lending.LoanAccount, len(rows))
	for i := range rows {
		loans[i] = *rows[i].ToDomain()
	}
	return loans
}

// GormPaymentRepository implements lending.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *lending.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// FindByLoan returns the payments of a loan in the order they were made
func (r *GormPaymentRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]lending.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]lending.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// FindSameDay returns the most recent payment on loanID for amount within
// the calendar day of at, or nil
func (r *GormPaymentRepository) FindSameDay(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, at time.Time) (*lending.Payment, error) {
	dayStart := lending.StartOfDay(at)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var model models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND amount = ? AND paid_at >= ? AND paid_at < ?", loanID, amount, dayStart, dayEnd).
		Order("paid_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure the repositories implement the domain interfaces
var (
	_ lending.LoanAccountRepository = (*GormLoanAccountRepository)(nil)
	_ lending.PaymentRepository     = (*GormPaymentRepository)(nil)
)
