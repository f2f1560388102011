package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOwnerCashBoxRepository implements treasury.OwnerCashBoxRepository using GORM
type GormOwnerCashBoxRepository struct {
	db *gorm.DB
}

// NewGormOwnerCashBoxRepository creates a new GormOwnerCashBoxRepository
func NewGormOwnerCashBoxRepository(db *gorm.DB) *GormOwnerCashBoxRepository {
	return &GormOwnerCashBoxRepository{db: db}
}

// FindByID finds an owner cash box by its ID
func (r *GormOwnerCashBoxRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.OwnerCashBox, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an owner cash box and locks its row
func (r *GormOwnerCashBoxRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*treasury.OwnerCashBox, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOwnerCashBoxRepository) findOne(db *gorm.DB, id uuid.UUID) (*treasury.OwnerCashBox, error) {
	var model models.OwnerCashBoxModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner returns every cash box of an owner ordered by currency
func (r *GormOwnerCashBoxRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]treasury.OwnerCashBox, error) {
	var rows []models.OwnerCashBoxModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("currency ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	boxes := make([]treasury.OwnerCashBox, len(rows))
	for i := range rows {
		boxes[i] = *rows[i].ToDomain()
	}
	return boxes, nil
}

// CreateIfAbsent inserts the box unless one already exists for the same
// owner and currency
func (r *GormOwnerCashBoxRepository) CreateIfAbsent(ctx context.Context, box *treasury.OwnerCashBox) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "currency"}},
			DoNothing: true,
		}).
		Create(models.OwnerCashBoxModelFromDomain(box))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateBalance writes a new balance
func (r *GormOwnerCashBoxRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return updateBalance(ctx, r.db, &models.OwnerCashBoxModel{}, id, balance)
}

// GormRouteCashBoxRepository implements treasury.RouteCashBoxRepository using GORM
type GormRouteCashBoxRepository struct {
	db *gorm.DB
}

// NewGormRouteCashBoxRepository creates a new GormRouteCashBoxRepository
func NewGormRouteCashBoxRepository(db *gorm.DB) *GormRouteCashBoxRepository {
	return &GormRouteCashBoxRepository{db: db}
}

// FindByRoute finds the cash box of a route
func (r *GormRouteCashBoxRepository) FindByRoute(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	return r.findOne(r.db.WithContext(ctx), routeID)
}

// FindByRouteForUpdate finds the cash box of a route and locks its row
func (r *GormRouteCashBoxRepository) FindByRouteForUpdate(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), routeID)
}

func (r *GormRouteCashBoxRepository) findOne(db *gorm.DB, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	var model models.RouteCashBoxModel
	if err := db.Where("route_id = ?", routeID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateIfAbsent inserts the box unless the route already has one
func (r *GormRouteCashBoxRepository) CreateIfAbsent(ctx context.Context, box *treasury.RouteCashBox) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "route_id"}},
			DoNothing: true,
		}).
		Create(models.RouteCashBoxModelFromDomain(box))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateBalance writes a new balance
func (r *GormRouteCashBoxRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return updateBalance(ctx, r.db, &models.RouteCashBoxModel{}, id, balance)
}

func updateBalance(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, balance decimal.Decimal) error {
	result := db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    balance,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return treasury.ErrAccountNotFound
	}
	return nil
}

// Ensure the repositories implement the domain interfaces
var (
	_ treasury.OwnerCashBoxRepository = (*GormOwnerCashBoxRepository)(nil)
	_ treasury.RouteCashBoxRepository = (*GormRouteCashBoxRepository)(nil)
)
