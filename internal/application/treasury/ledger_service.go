package treasury

import (
	"context"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService registers the incomes and expenses of field users.
// Expenses reduce the registering collector's projected balance.
type LedgerService struct {
	entries treasury.LedgerTransactionRepository
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(entries treasury.LedgerTransactionRepository) *LedgerService {
	return &LedgerService{entries: entries, now: time.Now}
}

// SetClock overrides the time source
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordExpense registers money spent by a user
func (s *LedgerService) RecordExpense(ctx context.Context, input LedgerEntryInput) (*treasury.LedgerTransaction, error) {
	return s.record(ctx, treasury.NatureExpense, input)
}

// RecordIncome registers money received by a user outside loan collections
func (s *LedgerService) RecordIncome(ctx context.Context, input LedgerEntryInput) (*treasury.LedgerTransaction, error) {
	return s.record(ctx, treasury.NatureIncome, input)
}

func (s *LedgerService) record(ctx context.Context, nature treasury.Nature, input LedgerEntryInput) (*treasury.LedgerTransaction, error) {
	if !valueobject.IsValidAmount(input.Amount) {
		return nil, treasury.ErrInvalidAmount
	}
	amount, err := valueobject.NewMoney(input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	entry, err := treasury.NewLedgerTransaction(treasury.LedgerEntry{
		Nature:      nature,
		Concept:     input.Concept,
		Description: input.Description,
		Amount:      amount,
		UserID:      input.UserID,
		RouteID:     input.RouteID,
	}, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("ledger entry recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("nature", string(entry.Nature)),
		zap.String("concept", entry.Concept),
		zap.String("amount", entry.Amount.String()),
		zap.String("currency", entry.Currency.String()))
	return entry, nil
}

// ListForUser returns a page of a user's incomes and expenses
func (s *LedgerService) ListForUser(ctx context.Context, userID uuid.UUID, page shared.Page) ([]treasury.LedgerTransaction, int64, error) {
	return s.entries.FindByUser(ctx, userID, page)
}
