package persistence

import (
	"context"
	"errors"

	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDirectory implements treasury.Directory over the route, owner,
// collector and currency registries
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GormDirectory
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// FindRoute finds a route by its ID
func (d *GormDirectory) FindRoute(ctx context.Context, id uuid.UUID) (*treasury.Route, error) {
	var model models.RouteModel
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActiveRoutes returns all active routes ordered by name
func (d *GormDirectory) ListActiveRoutes(ctx context.Context) ([]treasury.Route, error) {
	var rows []models.RouteModel
	if err := d.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	routes := make([]treasury.Route, len(rows))
	for i := range rows {
		routes[i] = *rows[i].ToDomain()
	}
	return routes, nil
}

// FindOwner finds an owner by its ID
func (d *GormDirectory) FindOwner(ctx context.Context, id uuid.UUID) (*treasury.Owner, error) {
	var model models.OwnerModel
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCollector finds a collector by user ID
func (d *GormDirectory) FindCollector(ctx context.Context, userID uuid.UUID) (*treasury.Collector, error) {
	var model models.CollectorModel
	if err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ActiveCurrencies returns the codes of active currencies in code order
func (d *GormDirectory) ActiveCurrencies(ctx context.Context) ([]valueobject.Currency, error) {
	var codes []string
	if err := d.db.WithContext(ctx).
		Model(&models.CurrencyModel{}).
		Where("active = ?", true).
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	currencies := make([]valueobject.Currency, len(codes))
	for i, code := range codes {
		currencies[i] = valueobject.Currency(code)
	}
	return currencies, nil
}

var _ treasury.Directory = (*GormDirectory)(nil)
