package treasury

import (
	"context"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerCashBoxRepository persists owner cash boxes.
// Finders return (nil, nil) when the box does not exist.
type OwnerCashBoxRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OwnerCashBox, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*OwnerCashBox, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]OwnerCashBox, error)
	// CreateIfAbsent inserts box unless (owner, currency) already exists and
	// reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, box *OwnerCashBox) (bool, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

// RouteCashBoxRepository persists route cash boxes, one per route
type RouteCashBoxRepository interface {
	FindByRoute(ctx context.Context, routeID uuid.UUID) (*RouteCashBox, error)
	FindByRouteForUpdate(ctx context.Context, routeID uuid.UUID) (*RouteCashBox, error)
	CreateIfAbsent(ctx context.Context, box *RouteCashBox) (bool, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

// TransferFilter narrows a transfer listing
type TransferFilter struct {
	UserID   *uuid.UUID // origin or destination user
	RouteID  *uuid.UUID // origin or destination route
	Currency valueobject.Currency
	Page     shared.Page
}

// TransferRepository persists transfers. Transfers are append-only.
type TransferRepository interface {
	Create(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindAll(ctx context.Context, filter TransferFilter) ([]Transfer, int64, error)
}

// LedgerTransactionRepository persists income and expense rows
type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx *LedgerTransaction) error
	FindByUser(ctx context.Context, userID uuid.UUID, page shared.Page) ([]LedgerTransaction, int64, error)
}

// CollectorLedgerReader sums a collector's history. An empty currency sums
// across all currencies.
type CollectorLedgerReader interface {
	CollectorLedger(ctx context.Context, collectorID uuid.UUID, currency valueobject.Currency) (CollectorLedger, error)
}
