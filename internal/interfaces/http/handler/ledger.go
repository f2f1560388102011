package handler

import (
	"context"

	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService records a user's incomes and expenses
type LedgerService interface {
	RecordExpense(ctx context.Context, input apptreasury.LedgerEntryInput) (*treasury.LedgerTransaction, error)
	RecordIncome(ctx context.Context, input apptreasury.LedgerEntryInput) (*treasury.LedgerTransaction, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page shared.Page) ([]treasury.LedgerTransaction, int64, error)
}

// LedgerHandler handles income and expense endpoints
type LedgerHandler struct {
	BaseHandler
	ledger LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// LedgerEntryRequest is the body of the expense and income endpoints.
// The entry is always booked to the caller.
type LedgerEntryRequest struct {
	Concept     string          `json:"concept" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required"`
	RouteID     *uuid.UUID      `json:"route_id"`
}

// RecordExpense books an expense paid by the caller.
// POST /ledger/expenses
func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	h.record(c, h.ledger.RecordExpense)
}

// RecordIncome books an income received by the caller.
// POST /ledger/incomes
func (h *LedgerHandler) RecordIncome(c *gin.Context) {
	h.record(c, h.ledger.RecordIncome)
}

func (h *LedgerHandler) record(c *gin.Context, book func(context.Context, apptreasury.LedgerEntryInput) (*treasury.LedgerTransaction, error)) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req LedgerEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := book(c.Request.Context(), apptreasury.LedgerEntryInput{
		UserID:      userID,
		RouteID:     req.RouteID,
		Concept:     req.Concept,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apptreasury.ToLedgerTransactionResponse(entry))
}

// List returns a user's incomes and expenses, the caller's by default.
// GET /ledger?user_id=
func (h *LedgerHandler) List(c *gin.Context) {
	userID, ok := h.QueryUUID(c, "user_id")
	if !ok {
		return
	}
	if userID == nil {
		self, ok := h.CurrentUser(c)
		if !ok {
			return
		}
		userID = &self
	}
	page := PageFromQuery(c)
	entries, total, err := h.ledger.ListForUser(c.Request.Context(), *userID, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, apptreasury.ToLedgerTransactionResponses(entries), total, page)
}
