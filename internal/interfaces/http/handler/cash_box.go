package handler

import (
	"context"

	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CashBoxRegistry provisions and reads owner and route cash boxes
type CashBoxRegistry interface {
	EnsureOwnerCashBoxes(ctx context.Context, ownerID uuid.UUID) ([]treasury.OwnerCashBox, error)
	ListOwnerCashBoxes(ctx context.Context, ownerID uuid.UUID) ([]treasury.OwnerCashBox, error)
	EnsureRouteCashBox(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error)
	GetRouteCashBox(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error)
	EnsureAllRouteCashBoxes(ctx context.Context) (int, error)
}

// CashBoxHandler handles cash box provisioning endpoints
type CashBoxHandler struct {
	BaseHandler
	registry CashBoxRegistry
}

// NewCashBoxHandler creates a new CashBoxHandler
func NewCashBoxHandler(registry CashBoxRegistry) *CashBoxHandler {
	return &CashBoxHandler{registry: registry}
}

// EnsureOwnerBoxes creates the owner's missing boxes, one per active currency.
// POST /owners/:id/cash-boxes
func (h *CashBoxHandler) EnsureOwnerBoxes(c *gin.Context) {
	ownerID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	boxes, err := h.registry.EnsureOwnerCashBoxes(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptreasury.ToOwnerCashBoxResponses(boxes))
}

// ListOwnerBoxes lists the owner's boxes.
// GET /owners/:id/cash-boxes
func (h *CashBoxHandler) ListOwnerBoxes(c *gin.Context) {
	ownerID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	boxes, err := h.registry.ListOwnerCashBoxes(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptreasury.ToOwnerCashBoxResponses(boxes))
}

// EnsureRouteBox creates the route's box if missing.
// POST /routes/:id/cash-box
func (h *CashBoxHandler) EnsureRouteBox(c *gin.Context) {
	routeID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	box, err := h.registry.EnsureRouteCashBox(c.Request.Context(), routeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptreasury.ToRouteCashBoxResponse(box))
}

// GetRouteBox returns the route's box.
// GET /routes/:id/cash-box
func (h *CashBoxHandler) GetRouteBox(c *gin.Context) {
	routeID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	box, err := h.registry.GetRouteCashBox(c.Request.Context(), routeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptreasury.ToRouteCashBoxResponse(box))
}

// EnsureAllRouteBoxes backfills boxes for every active route.
// POST /routes/cash-boxes
func (h *CashBoxHandler) EnsureAllRouteBoxes(c *gin.Context) {
	created, err := h.registry.EnsureAllRouteCashBoxes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"created": created})
}
