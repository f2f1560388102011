package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerService(w *world) *LedgerService {
	svc := NewLedgerService(w.ledger)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func TestLedgerService_Record(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := newLedgerService(w)
	routeID := w.routeID

	expense, err := svc.RecordExpense(ctx, LedgerEntryInput{
		UserID:      w.collectorID,
		RouteID:     &routeID,
		Concept:     " fuel ",
		Description: "motorbike",
		Amount:      decimal.NewFromInt(15000),
		Currency:    "COP",
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.NatureExpense, expense.Nature)
	assert.Equal(t, "FUEL", expense.Concept)
	assert.Equal(t, fixedNow, expense.OccurredAt)
	assert.Equal(t, &routeID, expense.RouteID)

	income, err := svc.RecordIncome(ctx, LedgerEntryInput{
		UserID:   w.collectorID,
		Concept:  "fee",
		Amount:   decimal.NewFromInt(2000),
		Currency: "COP",
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.NatureIncome, income.Nature)

	items, total, err := svc.ListForUser(ctx, w.collectorID, shared.DefaultPage())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestLedgerService_Rejections(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	tests := []struct {
		name    string
		input   LedgerEntryInput
		wantErr error
	}{
		{"zero amount", LedgerEntryInput{UserID: user, Concept: "fuel", Amount: decimal.Zero, Currency: "COP"}, treasury.ErrInvalidAmount},
		{"negative amount", LedgerEntryInput{UserID: user, Concept: "fuel", Amount: decimal.NewFromInt(-5), Currency: "COP"}, treasury.ErrInvalidAmount},
		{"sub-cent amount", LedgerEntryInput{UserID: user, Concept: "fuel", Amount: decimal.RequireFromString("12.345"), Currency: "COP"}, treasury.ErrInvalidAmount},
		{"missing concept", LedgerEntryInput{UserID: user, Concept: "  ", Amount: decimal.NewFromInt(5), Currency: "COP"}, treasury.ErrMissingConcept},
		{"missing user", LedgerEntryInput{Concept: "fuel", Amount: decimal.NewFromInt(5), Currency: "COP"}, shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			_, err := newLedgerService(w).RecordExpense(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, w.ledger.items)
		})
	}
}
