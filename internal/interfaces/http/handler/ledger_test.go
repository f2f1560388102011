package handler

import (
	"context"
	"net/http"
	"testing"

	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLedgerService implements LedgerService for testing
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordExpense(ctx context.Context, input apptreasury.LedgerEntryInput) (*treasury.LedgerTransaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.LedgerTransaction), args.Error(1)
}

func (m *MockLedgerService) RecordIncome(ctx context.Context, input apptreasury.LedgerEntryInput) (*treasury.LedgerTransaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.LedgerTransaction), args.Error(1)
}

func (m *MockLedgerService) ListForUser(ctx context.Context, userID uuid.UUID, page shared.Page) ([]treasury.LedgerTransaction, int64, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]treasury.LedgerTransaction), args.Get(1).(int64), args.Error(2)
}

func setupLedgerRouter(userID uuid.UUID) (*gin.Engine, *MockLedgerService) {
	svc := new(MockLedgerService)
	h := NewLedgerHandler(svc)
	engine := newAuthedEngine(userID)
	engine.POST("/ledger/expenses", h.RecordExpense)
	engine.POST("/ledger/incomes", h.RecordIncome)
	engine.GET("/ledger", h.List)
	return engine, svc
}

func TestLedgerHandler_RecordExpense(t *testing.T) {
	userID := uuid.New()
	routeID := uuid.New()
	engine, svc := setupLedgerRouter(userID)

	svc.On("RecordExpense", mock.Anything, mock.MatchedBy(func(in apptreasury.LedgerEntryInput) bool {
		return in.UserID == userID &&
			in.RouteID != nil && *in.RouteID == routeID &&
			in.Concept == "FUEL" &&
			in.Amount.Equal(decimal.NewFromInt(15))
	})).Return(&treasury.LedgerTransaction{
		BaseEntity:   shared.BaseEntity{ID: uuid.New()},
		Nature:       treasury.NatureExpense,
		Concept:      "FUEL",
		Amount:       decimal.NewFromInt(15),
		Currency:     "USD",
		OriginUserID: userID,
		RouteID:      &routeID,
	}, nil)

	w := performRequest(engine, http.MethodPost, "/ledger/expenses", map[string]any{
		"concept":  "FUEL",
		"amount":   "15",
		"currency": "USD",
		"route_id": routeID,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "EXPENSE", data["nature"])
	svc.AssertExpectations(t)
}

func TestLedgerHandler_RecordIncome(t *testing.T) {
	userID := uuid.New()
	engine, svc := setupLedgerRouter(userID)
	svc.On("RecordIncome", mock.Anything, mock.MatchedBy(func(in apptreasury.LedgerEntryInput) bool {
		return in.UserID == userID && in.RouteID == nil
	})).Return(&treasury.LedgerTransaction{Nature: treasury.NatureIncome, OriginUserID: userID}, nil)

	w := performRequest(engine, http.MethodPost, "/ledger/incomes", map[string]any{
		"concept":  "CAPITAL",
		"amount":   "500",
		"currency": "USD",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertNotCalled(t, "RecordExpense", mock.Anything, mock.Anything)
}

func TestLedgerHandler_Record_MissingConcept(t *testing.T) {
	engine, svc := setupLedgerRouter(uuid.New())

	w := performRequest(engine, http.MethodPost, "/ledger/expenses", map[string]any{
		"amount":   "15",
		"currency": "USD",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "RecordExpense", mock.Anything, mock.Anything)
}

func TestLedgerHandler_Record_InvalidAmount(t *testing.T) {
	engine, svc := setupLedgerRouter(uuid.New())
	svc.On("RecordExpense", mock.Anything, mock.Anything).Return(nil, treasury.ErrInvalidAmount)

	w := performRequest(engine, http.MethodPost, "/ledger/expenses", map[string]any{
		"concept":  "FUEL",
		"amount":   "0",
		"currency": "USD",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_AMOUNT", decodeResponse(t, w).Error.Code)
}

func TestLedgerHandler_List(t *testing.T) {
	caller := uuid.New()
	other := uuid.New()
	engine, svc := setupLedgerRouter(caller)
	svc.On("ListForUser", mock.Anything, caller, shared.DefaultPage()).
		Return([]treasury.LedgerTransaction{{Nature: treasury.NatureExpense}}, int64(1), nil)
	svc.On("ListForUser", mock.Anything, other, shared.Page{Number: 1, Size: 5}).
		Return([]treasury.LedgerTransaction{}, int64(0), nil)

	w := performRequest(engine, http.MethodGet, "/ledger", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w).Data, 1)

	w = performRequest(engine, http.MethodGet, "/ledger?user_id="+other.String()+"&page_size=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
