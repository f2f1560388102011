package models

import (
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanAccountModel is the persistence model for lending.LoanAccount
type LoanAccountModel struct {
	AggregateModel
	BorrowerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	RouteID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	CollectorID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Principal           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate        decimal.Decimal `gorm:"type:decimal(7,2);not null"`
	TotalPayable        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Outstanding         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InstallmentValue    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency            string          `gorm:"type:varchar(3);not null"`
	Frequency           string          `gorm:"type:varchar(20);not null"`
	InstallmentsTotal   int             `gorm:"not null"`
	InstallmentsPaid    int             `gorm:"not null;default:0"`
	InstallmentsOverdue int             `gorm:"not null;default:0"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
	StartDate           time.Time       `gorm:"type:timestamp;not null"`
	EstimatedEndDate    time.Time       `gorm:"type:timestamp;not null"`
	LastPaymentDate     *time.Time      `gorm:"type:timestamp"`
	Payments            []PaymentModel  `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (LoanAccountModel) TableName() string {
	return "loan_accounts"
}

// ToDomain converts the model to a domain loan account
func (m *LoanAccountModel) ToDomain() *lending.LoanAccount {
	return &lending.LoanAccount{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		BorrowerID:          m.BorrowerID,
		RouteID:             m.RouteID,
		CollectorID:         m.CollectorID,
		Principal:           m.Principal,
		InterestRate:        m.InterestRate,
		TotalPayable:        m.TotalPayable,
		Outstanding:         m.Outstanding,
		InstallmentValue:    m.InstallmentValue,
		Currency:            valueobject.Currency(m.Currency),
		Frequency:           lending.Frequency(m.Frequency),
		InstallmentsTotal:   m.InstallmentsTotal,
		InstallmentsPaid:    m.InstallmentsPaid,
		InstallmentsOverdue: m.InstallmentsOverdue,
		Status:              lending.LoanStatus(m.Status),
		StartDate:           m.StartDate,
		EstimatedEndDate:    m.EstimatedEndDate,
		LastPaymentDate:     m.LastPaymentDate,
	}
}

// LoanAccountModelFromDomain converts a domain loan account to the model
func LoanAccountModelFromDomain(l *lending.LoanAccount) *LoanAccountModel {
	m := &LoanAccountModel{
		BorrowerID:          l.BorrowerID,
		RouteID:             l.RouteID,
		CollectorID:         l.CollectorID,
		Principal:           l.Principal,
		InterestRate:        l.InterestRate,
		TotalPayable:        l.TotalPayable,
		Outstanding:         l.Outstanding,
		InstallmentValue:    l.InstallmentValue,
		Currency:            l.Currency.String(),
		Frequency:           l.Frequency.String(),
		InstallmentsTotal:   l.InstallmentsTotal,
		InstallmentsPaid:    l.InstallmentsPaid,
		InstallmentsOverdue: l.InstallmentsOverdue,
		Status:              l.Status.String(),
		StartDate:           l.StartDate,
		EstimatedEndDate:    l.EstimatedEndDate,
		LastPaymentDate:     l.LastPaymentDate,
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for lending.Payment
type PaymentModel struct {
	BaseModel
	LoanID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_loan_paid,priority:1"`
	CollectorID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InstallmentsCovered int             `gorm:"not null"`
	BalanceBefore       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceAfter        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAt              time.Time       `gorm:"type:timestamp;not null;index:idx_payments_loan_paid,priority:2"`
	Kind                string          `gorm:"type:varchar(20);not null"`
	Notes               string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain payment
func (m *PaymentModel) ToDomain() *lending.Payment {
	return &lending.Payment{
		BaseEntity:          m.BaseModel.ToDomain(),
		LoanID:              m.LoanID,
		CollectorID:         m.CollectorID,
		Amount:              m.Amount,
		InstallmentsCovered: m.InstallmentsCovered,
		BalanceBefore:       m.BalanceBefore,
		BalanceAfter:        m.BalanceAfter,
		PaidAt:              m.PaidAt,
		Kind:                lending.PaymentKind(m.Kind),
		Notes:               m.Notes,
	}
}

// PaymentModelFromDomain converts a domain payment to the model
func PaymentModelFromDomain(p *lending.Payment) *PaymentModel {
	m := &PaymentModel{
		LoanID:              p.LoanID,
		CollectorID:         p.CollectorID,
		Amount:              p.Amount,
		InstallmentsCovered: p.InstallmentsCovered,
		BalanceBefore:       p.BalanceBefore,
		BalanceAfter:        p.BalanceAfter,
		PaidAt:              p.PaidAt,
		Kind:                string(p.Kind),
		Notes:               p.Notes,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

