package models

import (
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerCashBoxModel is the persistence model for treasury.OwnerCashBox
type OwnerCashBoxModel struct {
	BaseModel
	OwnerID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_owner_cash_boxes_owner_currency,priority:1"`
	Currency string          `gorm:"type:varchar(3);not null;uniqueIndex:idx_owner_cash_boxes_owner_currency,priority:2"`
	Balance  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (OwnerCashBoxModel) TableName() string {
	return "owner_cash_boxes"
}

// ToDomain converts the model to a domain owner cash box
func (m *OwnerCashBoxModel) ToDomain() *treasury.OwnerCashBox {
	return &treasury.OwnerCashBox{
		CashBox: treasury.CashBox{
			BaseEntity: m.BaseModel.ToDomain(),
			Currency:   valueobject.Currency(m.Currency),
			Balance:    m.Balance,
		},
		OwnerID: m.OwnerID,
	}
}

// OwnerCashBoxModelFromDomain converts a domain owner cash box to the model
func OwnerCashBoxModelFromDomain(b *treasury.OwnerCashBox) *OwnerCashBoxModel {
	m := &OwnerCashBoxModel{
		OwnerID:  b.OwnerID,
		Currency: b.Currency.String(),
		Balance:  b.Balance,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// RouteCashBoxModel is the persistence model for treasury.RouteCashBox
type RouteCashBoxModel struct {
	BaseModel
	RouteID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Currency string          `gorm:"type:varchar(3);not null"`
	Balance  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (RouteCashBoxModel) TableName() string {
	return "route_cash_boxes"
}

// ToDomain converts the model to a domain route cash box
func (m *RouteCashBoxModel) ToDomain() *treasury.RouteCashBox {
	return &treasury.RouteCashBox{
		CashBox: treasury.CashBox{
			BaseEntity: m.BaseModel.ToDomain(),
			Currency:   valueobject.Currency(m.Currency),
			Balance:    m.Balance,
		},
		RouteID: m.RouteID,
	}
}

// RouteCashBoxModelFromDomain converts a domain route cash box to the model
func RouteCashBoxModelFromDomain(b *treasury.RouteCashBox) *RouteCashBoxModel {
	m := &RouteCashBoxModel{
		RouteID:  b.RouteID,
		Currency: b.Currency.String(),
		Balance:  b.Balance,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// CashTransactionModel stores transfers and ledger transactions in one
// table, told apart by Nature. Transfer-only columns are empty for
// INCOME and EXPENSE rows.
type CashTransactionModel struct {
	BaseModel
	Nature               string          `gorm:"type:varchar(10);not null;index"`
	Concept              string          `gorm:"type:varchar(50);not null"`
	Description          string          `gorm:"type:text"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency             string          `gorm:"type:varchar(3);not null;index"`
	OccurredAt           time.Time       `gorm:"type:timestamp;not null;index"`
	OriginKind           string          `gorm:"type:varchar(10)"`
	DestinationKind      string          `gorm:"type:varchar(10)"`
	OriginUserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	DestinationUserID    *uuid.UUID      `gorm:"type:uuid;index"`
	OriginRouteID        *uuid.UUID      `gorm:"type:uuid;index"`
	DestinationRouteID   *uuid.UUID      `gorm:"type:uuid;index"`
	OriginCashBoxID      *uuid.UUID      `gorm:"type:uuid"`
	DestinationCashBoxID *uuid.UUID      `gorm:"type:uuid"`
	AuthorizedBy         *uuid.UUID      `gorm:"type:uuid"`
	Version              int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToTransfer converts a TRANSFER row to the domain transfer
func (m *CashTransactionModel) ToTransfer() *treasury.Transfer {
	t := &treasury.Transfer{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Concept:              m.Concept,
		Description:          m.Description,
		Amount:               m.Amount,
		Currency:             valueobject.Currency(m.Currency),
		OccurredAt:           m.OccurredAt,
		OriginKind:           treasury.EndpointKind(m.OriginKind),
		DestinationKind:      treasury.EndpointKind(m.DestinationKind),
		OriginUserID:         m.OriginUserID,
		OriginRouteID:        m.OriginRouteID,
		DestinationRouteID:   m.DestinationRouteID,
		OriginCashBoxID:      m.OriginCashBoxID,
		DestinationCashBoxID: m.DestinationCashBoxID,
	}
	if m.DestinationUserID != nil {
		t.DestinationUserID = *m.DestinationUserID
	}
	if m.AuthorizedBy != nil {
		t.AuthorizedBy = *m.AuthorizedBy
	}
	return t
}

// CashTransactionModelFromTransfer converts a domain transfer to the model
func CashTransactionModelFromTransfer(t *treasury.Transfer) *CashTransactionModel {
	destinationUser := t.DestinationUserID
	authorizedBy := t.AuthorizedBy
	m := &CashTransactionModel{
		Nature:               string(treasury.NatureTransfer),
		Concept:              t.Concept,
		Description:          t.Description,
		Amount:               t.Amount,
		Currency:             t.Currency.String(),
		OccurredAt:           t.OccurredAt,
		OriginKind:           t.OriginKind.String(),
		DestinationKind:      t.DestinationKind.String(),
		OriginUserID:         t.OriginUserID,
		DestinationUserID:    &destinationUser,
		OriginRouteID:        t.OriginRouteID,
		DestinationRouteID:   t.DestinationRouteID,
		OriginCashBoxID:      t.OriginCashBoxID,
		DestinationCashBoxID: t.DestinationCashBoxID,
		AuthorizedBy:         &authorizedBy,
		Version:              t.Version,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// ToLedgerTransaction converts an INCOME or EXPENSE row to the domain type
func (m *CashTransactionModel) ToLedgerTransaction() *treasury.LedgerTransaction {
	return &treasury.LedgerTransaction{
		BaseEntity:   m.BaseModel.ToDomain(),
		Nature:       treasury.Nature(m.Nature),
		Concept:      m.Concept,
		Description:  m.Description,
		Amount:       m.Amount,
		Currency:     valueobject.Currency(m.Currency),
		OccurredAt:   m.OccurredAt,
		OriginUserID: m.OriginUserID,
		RouteID:      m.OriginRouteID,
	}
}

// CashTransactionModelFromLedger converts a domain ledger transaction to the model
func CashTransactionModelFromLedger(tx *treasury.LedgerTransaction) *CashTransactionModel {
	m := &CashTransactionModel{
		Nature:        string(tx.Nature),
		Concept:       tx.Concept,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Currency:      tx.Currency.String(),
		OccurredAt:    tx.OccurredAt,
		OriginUserID:  tx.OriginUserID,
		OriginRouteID: tx.RouteID,
		Version:       1,
	}
	m.FromDomainBaseEntity(tx.BaseEntity)
	return m
}
