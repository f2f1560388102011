package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	applending "github.com/fieldcredit/backend/internal/application/lending"
	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanService is the loan account surface the handler needs
type LoanService interface {
	Disburse(ctx context.Context, input applending.DisburseLoanInput) (*lending.LoanAccount, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error)
	ListLoans(ctx context.Context, filter lending.LoanFilter) ([]lending.LoanAccount, int64, error)
	ListPayments(ctx context.Context, loanID uuid.UUID) ([]lending.Payment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error)
	MarkDefault(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*lending.LoanAccount, error)
}

// PaymentService applies collections to loans
type PaymentService interface {
	ApplyPayment(ctx context.Context, input applending.ApplyPaymentInput) (*lending.Payment, error)
}

// OverdueRunner runs the overdue sweep on demand under the sweep lock
type OverdueRunner interface {
	RunOnce(ctx context.Context) (scheduler.RunRecord, error)
	LastRun() (scheduler.RunRecord, bool)
}

// LoanHandler handles loan account and payment endpoints
type LoanHandler struct {
	BaseHandler
	loans    LoanService
	payments PaymentService
	overdue  OverdueRunner
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loans LoanService, payments PaymentService, overdue OverdueRunner) *LoanHandler {
	return &LoanHandler{loans: loans, payments: payments, overdue: overdue}
}

// ApplyPaymentRequest is the body of POST /loans/:id/payments
type ApplyPaymentRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	Kind              string          `json:"kind" binding:"omitempty,oneof=NORMAL PARTIAL FULL MULTIPLE"`
	Installments      int             `json:"installments" binding:"omitempty,min=1"`
	CollectorID       *uuid.UUID      `json:"collector_id"`
	OverrideDuplicate bool            `json:"override_duplicate"`
	Notes             string          `json:"notes" binding:"max=500"`
}

// Disburse creates a loan account.
// POST /loans
func (h *LoanHandler) Disburse(c *gin.Context) {
	var req applending.DisburseLoanInput
	if !h.BindJSON(c, &req) {
		return
	}
	loan, err := h.loans.Disburse(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, applending.ToLoanResponse(loan))
}

// Get returns one loan account.
// GET /loans/:id
func (h *LoanHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	loan, err := h.loans.GetLoan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, applending.ToLoanResponse(loan))
}

// List returns loans filtered by route, collector and status.
// GET /loans?route_id=&collector_id=&status=
func (h *LoanHandler) List(c *gin.Context) {
	routeID, ok := h.QueryUUID(c, "route_id")
	if !ok {
		return
	}
	collectorID, ok := h.QueryUUID(c, "collector_id")
	if !ok {
		return
	}
	filter := lending.LoanFilter{
		RouteID:     routeID,
		CollectorID: collectorID,
		Status:      lending.LoanStatus(c.Query("status")),
		Page:        PageFromQuery(c),
	}
	loans, total, err := h.loans.ListLoans(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]applending.LoanResponse, len(loans))
	for i := range loans {
		out[i] = applending.ToLoanResponse(&loans[i])
	}
	h.SuccessWithMeta(c, out, total, filter.Page)
}

// ListPayments returns a loan's payments oldest first.
// GET /loans/:id/payments
func (h *LoanHandler) ListPayments(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	payments, err := h.loans.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, applending.ToPaymentResponses(payments))
}

// ApplyPayment registers a collection against a loan. A suspected
// resubmission answers 409 DUPLICATE_PAYMENT until retried with
// override_duplicate.
// POST /loans/:id/payments
func (h *LoanHandler) ApplyPayment(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	input := applending.ApplyPaymentInput{
		LoanID:            id,
		Amount:            req.Amount,
		Kind:              lending.PaymentKind(req.Kind),
		Installments:      req.Installments,
		OverrideDuplicate: req.OverrideDuplicate,
		Notes:             req.Notes,
	}
	if req.CollectorID != nil {
		input.CollectorID = *req.CollectorID
	}
	payment, err := h.payments.ApplyPayment(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, applending.ToPaymentResponse(payment))
}

// Cancel voids a loan without payments.
// POST /loans/:id/cancel
func (h *LoanHandler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.loans.Cancel)
}

// MarkDefault flags a loan as defaulted.
// POST /loans/:id/default
func (h *LoanHandler) MarkDefault(c *gin.Context) {
	h.changeStatus(c, h.loans.MarkDefault)
}

// Reactivate returns a defaulted loan to ACTIVE.
// POST /loans/:id/reactivate
func (h *LoanHandler) Reactivate(c *gin.Context) {
	h.changeStatus(c, h.loans.Reactivate)
}

func (h *LoanHandler) changeStatus(c *gin.Context, change func(context.Context, uuid.UUID) (*lending.LoanAccount, error)) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	loan, err := change(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, applending.ToLoanResponse(loan))
}

// RecalculateOverdue runs the overdue sweep now. A sweep already running
// elsewhere answers 409.
// POST /loans/overdue/recalculate
func (h *LoanHandler) RecalculateOverdue(c *gin.Context) {
	record, err := h.overdue.RunOnce(c.Request.Context())
	if errors.Is(err, scheduler.ErrLockNotObtained) {
		h.Error(c, http.StatusConflict, "SWEEP_IN_PROGRESS", "An overdue sweep is already running")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// LastOverdueRun reports the most recent sweep.
// GET /loans/overdue/last-run
func (h *LoanHandler) LastOverdueRun(c *gin.Context) {
	record, ok := h.overdue.LastRun()
	if !ok {
		h.Success(c, gin.H{"ran": false, "checked_at": time.Now()})
		return
	}
	h.Success(c, record)
}
