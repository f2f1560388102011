package treasury

import (
	"strings"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTransaction is an income or expense registered by a user, usually a
// collector paying for fuel or receiving an extra fee on the street.
type LedgerTransaction struct {
	shared.BaseEntity
	Nature       Nature
	Concept      string
	Description  string
	Amount       decimal.Decimal
	Currency     valueobject.Currency
	OccurredAt   time.Time
	OriginUserID uuid.UUID
	RouteID      *uuid.UUID
}

// LedgerEntry is the input for a new ledger transaction
type LedgerEntry struct {
	Nature      Nature
	Concept     string
	Description string
	Amount      valueobject.Money
	UserID      uuid.UUID
	RouteID     *uuid.UUID
}

// NewLedgerTransaction validates and creates an INCOME or EXPENSE row
func NewLedgerTransaction(entry LedgerEntry, now time.Time) (*LedgerTransaction, error) {
	if entry.Nature != NatureIncome && entry.Nature != NatureExpense {
		return nil, ErrInvalidNature
	}
	concept := strings.ToUpper(strings.TrimSpace(entry.Concept))
	if concept == "" {
		return nil, ErrMissingConcept
	}
	if !valueobject.IsValidAmount(entry.Amount.Amount()) {
		return nil, ErrInvalidAmount
	}
	if entry.UserID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User is required")
	}
	return &LedgerTransaction{
		BaseEntity:   shared.NewBaseEntity(now),
		Nature:       entry.Nature,
		Concept:      concept,
		Description:  strings.TrimSpace(entry.Description),
		Amount:       entry.Amount.Amount(),
		Currency:     entry.Amount.Currency(),
		OccurredAt:   now,
		OriginUserID: entry.UserID,
		RouteID:      entry.RouteID,
	}, nil
}
