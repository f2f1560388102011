package models

import (
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// The registries below are maintained by the surrounding application.
// This service only reads them.

// CurrencyModel is a row of the currency catalog
type CurrencyModel struct {
	Code   string `gorm:"type:varchar(3);primaryKey"`
	Name   string `gorm:"type:varchar(100)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CurrencyModel) TableName() string {
	return "currencies"
}

// RouteModel is a row of the route registry
type RouteModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(100);not null"`
	Currency string    `gorm:"type:varchar(3);not null"`
	Active   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RouteModel) TableName() string {
	return "routes"
}

// ToDomain converts the model to the route read model
func (m *RouteModel) ToDomain() *treasury.Route {
	return &treasury.Route{
		ID:       m.ID,
		Name:     m.Name,
		Currency: valueobject.Currency(m.Currency),
		Active:   m.Active,
	}
}

// OwnerModel is a row of the owner registry
type OwnerModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name   string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (OwnerModel) TableName() string {
	return "owners"
}

// ToDomain converts the model to the owner read model
func (m *OwnerModel) ToDomain() *treasury.Owner {
	return &treasury.Owner{ID: m.ID, UserID: m.UserID, Name: m.Name}
}

// CollectorModel is a row of the collector registry, keyed by user id
type CollectorModel struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"type:varchar(100);not null"`
	Active bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CollectorModel) TableName() string {
	return "collectors"
}

// ToDomain converts the model to the collector read model
func (m *CollectorModel) ToDomain() *treasury.Collector {
	return &treasury.Collector{UserID: m.UserID, Name: m.Name, Active: m.Active}
}
