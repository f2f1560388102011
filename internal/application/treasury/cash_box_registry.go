package treasury

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CashBoxRegistry provisions empty cash boxes on first sight of a route or
// an owner-currency pair. It never changes the balance of an existing box.
type CashBoxRegistry struct {
	ownerBoxes     treasury.OwnerCashBoxRepository
	routeBoxes     treasury.RouteCashBoxRepository
	directory      treasury.Directory
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewCashBoxRegistry creates a new CashBoxRegistry
func NewCashBoxRegistry(repos Repositories) *CashBoxRegistry {
	return &CashBoxRegistry{
		ownerBoxes: repos.OwnerCashBoxes,
		routeBoxes: repos.RouteCashBoxes,
		directory:  repos.Directory,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (r *CashBoxRegistry) SetEventPublisher(publisher shared.EventPublisher) {
	r.eventPublisher = publisher
}

// SetClock overrides the time source
func (r *CashBoxRegistry) SetClock(now func() time.Time) {
	r.now = now
}

// EnsureRouteCashBox returns the cash box of a route, creating it at zero
// in the route's currency when missing
func (r *CashBoxRegistry) EnsureRouteCashBox(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CashBoxRegistry", "EnsureRouteCashBox",
		attribute.String("route_id", routeID.String()))
	defer span.End()

	route, err := r.directory.FindRoute(ctx, routeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if route == nil {
		return nil, treasury.ErrRouteNotFound
	}
	box, _, err := r.ensureRouteBox(ctx, route)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return box, err
}

// ensureRouteBox reports whether the box was created by this call
func (r *CashBoxRegistry) ensureRouteBox(ctx context.Context, route *treasury.Route) (*treasury.RouteCashBox, bool, error) {
	existing, err := r.routeBoxes.FindByRoute(ctx, route.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	box := treasury.NewRouteCashBox(route.ID, route.Currency, r.now())
	inserted, err := r.routeBoxes.CreateIfAbsent(ctx, box)
	if err != nil {
		return nil, false, fmt.Errorf("provision route cash box: %w", err)
	}
	if !inserted {
		// provisioned concurrently
		existing, err = r.routeBoxes.FindByRoute(ctx, route.ID)
		return existing, false, err
	}

	logger.L(ctx).Info("route cash box provisioned",
		zap.String("route_id", route.ID.String()),
		zap.String("cash_box_id", box.ID.String()),
		zap.String("currency", box.Currency.String()))
	r.publish(ctx, treasury.NewRouteCashBoxProvisionedEvent(box))
	return box, true, nil
}

// EnsureOwnerCashBoxes creates one empty box per active currency the owner
// does not have yet and returns all of the owner's boxes
func (r *CashBoxRegistry) EnsureOwnerCashBoxes(ctx context.Context, ownerID uuid.UUID) ([]treasury.OwnerCashBox, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CashBoxRegistry", "EnsureOwnerCashBoxes",
		attribute.String("owner_id", ownerID.String()))
	defer span.End()

	owner, err := r.directory.FindOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if owner == nil {
		return nil, treasury.ErrOwnerNotFound
	}

	currencies, err := r.directory.ActiveCurrencies(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	existing, err := r.ownerBoxes.FindByOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.Currency.String()] = true
	}

	created := 0
	for _, currency := range currencies {
		if have[currency.String()] {
			continue
		}
		box := treasury.NewOwnerCashBox(ownerID, currency, r.now())
		inserted, err := r.ownerBoxes.CreateIfAbsent(ctx, box)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("provision owner cash box %s: %w", currency, err)
		}
		if inserted {
			created++
			r.publish(ctx, treasury.NewOwnerCashBoxProvisionedEvent(box))
		}
	}
	if created == 0 {
		return existing, nil
	}

	logger.L(ctx).Info("owner cash boxes provisioned",
		zap.String("owner_id", ownerID.String()),
		zap.Int("created", created))
	return r.ownerBoxes.FindByOwner(ctx, ownerID)
}

// EnsureAllRouteCashBoxes provisions a box for every active route and
// returns how many were created. Routes that fail are logged and skipped;
// the joined error reports them.
func (r *CashBoxRegistry) EnsureAllRouteCashBoxes(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CashBoxRegistry", "EnsureAllRouteCashBoxes")
	defer span.End()

	routes, err := r.directory.ListActiveRoutes(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	var (
		created int
		errs    []error
	)
	for i := range routes {
		route := &routes[i]
		_, inserted, err := r.ensureRouteBox(ctx, route)
		if err != nil {
			logger.L(ctx).Warn("route cash box provisioning failed",
				zap.String("route_id", route.ID.String()), zap.Error(err))
			errs = append(errs, fmt.Errorf("route %s: %w", route.ID, err))
			continue
		}
		if inserted {
			created++
		}
	}
	err = errors.Join(errs...)
	telemetry.RecordError(span, err)
	return created, err
}

// ListOwnerCashBoxes returns the boxes of an owner without provisioning
func (r *CashBoxRegistry) ListOwnerCashBoxes(ctx context.Context, ownerID uuid.UUID) ([]treasury.OwnerCashBox, error) {
	return r.ownerBoxes.FindByOwner(ctx, ownerID)
}

// GetRouteCashBox returns the box of a route or ACCOUNT_NOT_FOUND
func (r *CashBoxRegistry) GetRouteCashBox(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	box, err := r.routeBoxes.FindByRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, treasury.ErrAccountNotFound
	}
	return box, nil
}

func (r *CashBoxRegistry) publish(ctx context.Context, event shared.DomainEvent) {
	if r.eventPublisher == nil {
		return
	}
	_ = r.eventPublisher.Publish(ctx, event)
}
