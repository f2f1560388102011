package handler

import (
	"context"

	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CollectorBalanceService projects a collector's cash on hand
type CollectorBalanceService interface {
	Balance(ctx context.Context, collectorID uuid.UUID, currency string) (apptreasury.CollectorBalanceResponse, error)
}

// CollectorHandler handles collector balance endpoints
type CollectorHandler struct {
	BaseHandler
	balances CollectorBalanceService
}

// NewCollectorHandler creates a new CollectorHandler
func NewCollectorHandler(balances CollectorBalanceService) *CollectorHandler {
	return &CollectorHandler{balances: balances}
}

// Balance returns the projected balance with its breakdown. Without a
// currency the sums span all currencies.
// GET /collectors/:id/balance?currency=
func (h *CollectorHandler) Balance(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	balance, err := h.balances.Balance(c.Request.Context(), id, c.Query("currency"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
