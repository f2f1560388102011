package treasury

import (
	"context"

	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Route is the read model of a collection route
type Route struct {
	ID       uuid.UUID
	Name     string
	Currency valueobject.Currency
	Active   bool
}

// Owner is the read model of a business owner
type Owner struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

// Collector is the read model of a field collector, keyed by user id
type Collector struct {
	UserID uuid.UUID
	Name   string
	Active bool
}

// Directory reads the registries maintained outside this service.
// Finders return (nil, nil) when nothing matches.
type Directory interface {
	FindRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	ListActiveRoutes(ctx context.Context) ([]Route, error)
	FindOwner(ctx context.Context, id uuid.UUID) (*Owner, error)
	FindCollector(ctx context.Context, userID uuid.UUID) (*Collector, error)
	ActiveCurrencies(ctx context.Context) ([]valueobject.Currency, error)
}
