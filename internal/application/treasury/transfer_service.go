package treasury

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransferService moves funds between owner boxes, route boxes and
// collectors. Every transfer runs in one transaction: stored boxes are
// locked, checked, debited or credited and the audit row inserted together.
type TransferService struct {
	scope          TransactionScope
	transfers      treasury.TransferRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	now            func() time.Time
}

// NewTransferService creates a new TransferService
func NewTransferService(scope TransactionScope, transfers treasury.TransferRepository) *TransferService {
	return &TransferService{scope: scope, transfers: transfers, now: time.Now}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the transfer counters
func (s *TransferService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// SetClock overrides the time source
func (s *TransferService) SetClock(now func() time.Time) {
	s.now = now
}

// resolvedAccount pairs an account with the write that persists it
type resolvedAccount struct {
	treasury.Account
	persist func(ctx context.Context) error
}

// Execute validates and performs a transfer. Nothing is written unless
// every check passes.
func (s *TransferService) Execute(ctx context.Context, cmd TransferCommand) (*treasury.Transfer, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "TransferService", "Execute",
		attribute.String("amount", cmd.Amount.String()),
		attribute.String("currency", cmd.Currency),
	)
	defer span.End()

	money, err := s.validate(cmd)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordTransferRejected(ctx, commandConcept(cmd), rejectionReason(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("origin", endpointKey(cmd.Origin)),
		attribute.String("destination", endpointKey(cmd.Destination)),
	)

	now := s.now()
	var transfer *treasury.Transfer
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		origin, destination, err := s.resolvePair(ctx, repos, cmd.Origin, cmd.Destination, money.Currency())
		if err != nil {
			return err
		}

		if err := origin.Debit(money.Amount(), now); err != nil {
			return err
		}
		if err := destination.Credit(money.Amount(), now); err != nil {
			return err
		}
		if err := origin.persist(ctx); err != nil {
			return err
		}
		if err := destination.persist(ctx); err != nil {
			return err
		}

		transfer = treasury.NewTransfer(origin.Account, destination.Account, money, cmd.Description, cmd.AuthorizingUser, now)
		return repos.Transfers().Create(ctx, transfer)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordTransferRejected(ctx, commandConcept(cmd), rejectionReason(err))
		logger.L(ctx).Warn("transfer rejected",
			zap.String("origin", endpointKey(cmd.Origin)),
			zap.String("destination", endpointKey(cmd.Destination)),
			zap.String("amount", cmd.Amount.String()),
			zap.String("currency", cmd.Currency),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordTransferExecuted(ctx, transfer.Concept, transfer.Currency.String())
	logger.L(ctx).Info("transfer executed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("concept", transfer.Concept),
		zap.String("amount", transfer.Amount.String()),
		zap.String("currency", transfer.Currency.String()),
		zap.String("authorized_by", transfer.AuthorizedBy.String()))

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, transfer.GetDomainEvents()...)
		transfer.ClearDomainEvents()
	}
	return transfer, nil
}

func (s *TransferService) validate(cmd TransferCommand) (valueobject.Money, error) {
	if !valueobject.IsValidAmount(cmd.Amount) {
		return valueobject.Money{}, treasury.ErrInvalidAmount
	}
	money, err := valueobject.NewMoney(cmd.Amount, strings.ToUpper(strings.TrimSpace(cmd.Currency)))
	if err != nil {
		return valueobject.Money{}, err
	}
	if cmd.Origin == nil || cmd.Destination == nil {
		return valueobject.Money{}, treasury.ErrInvalidEndpoint.WithMessage("Origin and destination are required")
	}
	if cmd.Origin.Kind() == cmd.Destination.Kind() && cmd.Origin.Ref() == cmd.Destination.Ref() {
		return valueobject.Money{}, treasury.ErrSameEndpoint
	}
	if cmd.AuthorizingUser == uuid.Nil {
		return valueobject.Money{}, shared.ErrUnauthorized.WithMessage("Authorizing user is required")
	}
	return money, nil
}

// resolvePair loads both endpoints, taking row locks in a stable order so
// two opposite transfers cannot deadlock. Origin errors win over
// destination errors.
func (s *TransferService) resolvePair(ctx context.Context, repos TransactionalRepositories, origin, destination treasury.Endpoint, currency valueobject.Currency) (*resolvedAccount, *resolvedAccount, error) {
	var (
		o, d       *resolvedAccount
		oErr, dErr error
	)
	if endpointKey(origin) <= endpointKey(destination) {
		o, oErr = s.resolve(ctx, repos, origin, currency)
		if oErr == nil {
			d, dErr = s.resolve(ctx, repos, destination, currency)
		}
	} else {
		d, dErr = s.resolve(ctx, repos, destination, currency)
		o, oErr = s.resolve(ctx, repos, origin, currency)
	}
	if oErr != nil {
		return nil, nil, oErr
	}
	if dErr != nil {
		return nil, nil, dErr
	}
	return o, d, nil
}

// resolve maps an endpoint to its account. Stored boxes are locked for the
// rest of the transaction; collectors are projected from the ledger.
func (s *TransferService) resolve(ctx context.Context, repos TransactionalRepositories, endpoint treasury.Endpoint, currency valueobject.Currency) (*resolvedAccount, error) {
	switch e := endpoint.(type) {
	case treasury.OwnerEndpoint:
		box, err := repos.OwnerCashBoxes().FindByIDForUpdate(ctx, e.CashBoxID)
		if err != nil {
			return nil, err
		}
		if box == nil {
			return nil, treasury.ErrAccountNotFound.WithMessage(fmt.Sprintf("Owner cash box %s not found", e.CashBoxID))
		}
		if box.Currency != currency {
			return nil, currencyMismatch(box.Currency, currency)
		}
		owner, err := repos.Directory().FindOwner(ctx, box.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			return nil, treasury.ErrOwnerNotFound
		}
		return &resolvedAccount{
			Account: treasury.NewOwnerAccount(box, owner.Name, owner.UserID),
			persist: func(ctx context.Context) error {
				return repos.OwnerCashBoxes().UpdateBalance(ctx, box.ID, box.Balance)
			},
		}, nil

	case treasury.RouteEndpoint:
		box, err := repos.RouteCashBoxes().FindByRouteForUpdate(ctx, e.RouteID)
		if err != nil {
			return nil, err
		}
		if box == nil {
			return nil, treasury.ErrAccountNotFound.WithMessage(fmt.Sprintf("Route %s has no cash box", e.RouteID))
		}
		if box.Currency != currency {
			return nil, currencyMismatch(box.Currency, currency)
		}
		route, err := repos.Directory().FindRoute(ctx, e.RouteID)
		if err != nil {
			return nil, err
		}
		if route == nil {
			return nil, treasury.ErrRouteNotFound
		}
		return &resolvedAccount{
			Account: treasury.NewRouteAccount(box, route.Name),
			persist: func(ctx context.Context) error {
				return repos.RouteCashBoxes().UpdateBalance(ctx, box.ID, box.Balance)
			},
		}, nil

	case treasury.CollectorEndpoint:
		collector, err := repos.Directory().FindCollector(ctx, e.UserID)
		if err != nil {
			return nil, err
		}
		if collector == nil {
			return nil, treasury.ErrCollectorNotFound
		}
		ledger, err := repos.CollectorLedger().CollectorLedger(ctx, e.UserID, currency)
		if err != nil {
			return nil, fmt.Errorf("project collector balance: %w", err)
		}
		return &resolvedAccount{
			Account: treasury.NewCollectorAccount(ledger, collector.Name),
			persist: func(context.Context) error { return nil },
		}, nil
	}
	return nil, treasury.ErrInvalidEndpoint
}

func currencyMismatch(have, want valueobject.Currency) error {
	return treasury.ErrCurrencyMismatch.WithMessage(fmt.Sprintf("Account currency %s does not match %s", have, want))
}

func endpointKey(e treasury.Endpoint) string {
	if e == nil {
		return ""
	}
	return e.Kind().String() + ":" + e.Ref().String()
}

// Get returns a transfer or TRANSFER_NOT_FOUND
func (s *TransferService) Get(ctx context.Context, id uuid.UUID) (*treasury.Transfer, error) {
	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, treasury.ErrTransferNotFound
	}
	return transfer, nil
}

// ListForUser returns transfers where userID is the origin or destination user
func (s *TransferService) ListForUser(ctx context.Context, userID uuid.UUID, page shared.Page) ([]treasury.Transfer, int64, error) {
	return s.transfers.FindAll(ctx, treasury.TransferFilter{UserID: &userID, Page: page})
}

// List returns transfers matching the filter
func (s *TransferService) List(ctx context.Context, filter treasury.TransferFilter) ([]treasury.Transfer, int64, error) {
	return s.transfers.FindAll(ctx, filter)
}

// commandConcept names the transfer direction before endpoints are resolved
func commandConcept(cmd TransferCommand) string {
	if cmd.Origin == nil || cmd.Destination == nil {
		return "UNKNOWN"
	}
	return treasury.TransferConcept(cmd.Origin.Kind(), cmd.Destination.Kind())
}

// rejectionReason is the domain error code, or INTERNAL for anything else
func rejectionReason(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL"
}
