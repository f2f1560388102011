package treasury

import (
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashBox is a stored, currency-scoped balance
type CashBox struct {
	shared.BaseEntity
	Currency valueobject.Currency
	Balance  decimal.Decimal
}

// Debit removes amount, refusing to go below zero
func (b *CashBox) Debit(amount decimal.Decimal, now time.Time) error {
	if !valueobject.IsValidAmount(amount) {
		return ErrInvalidAmount
	}
	if b.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	b.Balance = b.Balance.Sub(amount)
	b.Touch(now)
	return nil
}

// Credit adds amount
func (b *CashBox) Credit(amount decimal.Decimal, now time.Time) error {
	if !valueobject.IsValidAmount(amount) {
		return ErrInvalidAmount
	}
	b.Balance = b.Balance.Add(amount)
	b.Touch(now)
	return nil
}

// OwnerCashBox holds an owner's funds in one currency
type OwnerCashBox struct {
	CashBox
	OwnerID uuid.UUID
}

// NewOwnerCashBox creates an empty owner box
func NewOwnerCashBox(ownerID uuid.UUID, currency valueobject.Currency, now time.Time) *OwnerCashBox {
	return &OwnerCashBox{
		CashBox: CashBox{BaseEntity: shared.NewBaseEntity(now), Currency: currency, Balance: decimal.Zero},
		OwnerID: ownerID,
	}
}

// RouteCashBox holds the funds of a route
type RouteCashBox struct {
	CashBox
	RouteID uuid.UUID
}

// NewRouteCashBox creates an empty route box
func NewRouteCashBox(routeID uuid.UUID, currency valueobject.Currency, now time.Time) *RouteCashBox {
	return &RouteCashBox{
		CashBox: CashBox{BaseEntity: shared.NewBaseEntity(now), Currency: currency, Balance: decimal.Zero},
		RouteID: routeID,
	}
}
