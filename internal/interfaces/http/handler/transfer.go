package handler

import (
	"context"

	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferService moves funds between owners, routes and collectors
type TransferService interface {
	Execute(ctx context.Context, cmd apptreasury.TransferCommand) (*treasury.Transfer, error)
	Get(ctx context.Context, id uuid.UUID) (*treasury.Transfer, error)
	List(ctx context.Context, filter treasury.TransferFilter) ([]treasury.Transfer, int64, error)
}

// TransferHandler handles transfer endpoints
type TransferHandler struct {
	BaseHandler
	transfers TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// EndpointRequest names one side of a transfer
type EndpointRequest struct {
	Kind string    `json:"kind" binding:"required,oneof=OWNER ROUTE COLLECTOR"`
	ID   uuid.UUID `json:"id" binding:"required"`
}

// CreateTransferRequest is the body of POST /transfers.
// For an OWNER endpoint the id is the cash box id, for ROUTE the route id
// and for COLLECTOR the collector's user id.
type CreateTransferRequest struct {
	Origin      EndpointRequest `json:"origin" binding:"required"`
	Destination EndpointRequest `json:"destination" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
}

// Create executes a transfer authorized by the caller.
// POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	origin, err := treasury.NewEndpoint(req.Origin.Kind, req.Origin.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	destination, err := treasury.NewEndpoint(req.Destination.Kind, req.Destination.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	transfer, err := h.transfers.Execute(c.Request.Context(), apptreasury.TransferCommand{
		Origin:          origin,
		Destination:     destination,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Description:     req.Description,
		AuthorizingUser: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apptreasury.ToTransferResponse(transfer))
}

// Get returns one transfer.
// GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	transfer, err := h.transfers.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptreasury.ToTransferResponse(transfer))
}

// List returns transfers touching a user or a route. Without filters it
// lists the caller's own transfers.
// GET /transfers?user_id=&route_id=&currency=
func (h *TransferHandler) List(c *gin.Context) {
	userID, ok := h.QueryUUID(c, "user_id")
	if !ok {
		return
	}
	routeID, ok := h.QueryUUID(c, "route_id")
	if !ok {
		return
	}
	if userID == nil && routeID == nil {
		self, ok := h.CurrentUser(c)
		if !ok {
			return
		}
		userID = &self
	}

	filter := treasury.TransferFilter{UserID: userID, RouteID: routeID, Page: PageFromQuery(c)}
	if raw := c.Query("currency"); raw != "" {
		currency, err := valueobject.NewCurrency(raw)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		filter.Currency = currency
	}

	transfers, total, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, apptreasury.ToTransferResponses(transfers), total, filter.Page)
}
