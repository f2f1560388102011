package treasury

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nature classifies a cash transaction row
type Nature string

const (
	NatureTransfer Nature = "TRANSFER"
	NatureIncome   Nature = "INCOME"
	NatureExpense  Nature = "EXPENSE"
)

// Transfer is the immutable audit record of a fund movement
type Transfer struct {
	shared.BaseAggregateRoot
	Concept              string
	Description          string
	Amount               decimal.Decimal
	Currency             valueobject.Currency
	OccurredAt           time.Time
	OriginKind           EndpointKind
	DestinationKind      EndpointKind
	OriginUserID         uuid.UUID
	DestinationUserID    uuid.UUID
	OriginRouteID        *uuid.UUID
	DestinationRouteID   *uuid.UUID
	OriginCashBoxID      *uuid.UUID
	DestinationCashBoxID *uuid.UUID
	AuthorizedBy         uuid.UUID
}

// Nature is always TRANSFER
func (t *Transfer) Nature() Nature {
	return NatureTransfer
}

// TransferConcept returns "{ORIGIN}_A_{DESTINATION}"
func TransferConcept(origin, destination EndpointKind) string {
	return fmt.Sprintf("%s_A_%s", origin, destination)
}

// NewTransfer builds the audit record for a movement that has already been
// debited from origin and credited to destination. Endpoints without a
// responsible user are attributed to authorizedBy.
func NewTransfer(origin, destination Account, amount valueobject.Money, note string, authorizedBy uuid.UUID, now time.Time) *Transfer {
	t := &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Concept:           TransferConcept(origin.Endpoint().Kind(), destination.Endpoint().Kind()),
		Description:       describe(origin, destination, note),
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		OccurredAt:        now,
		OriginKind:        origin.Endpoint().Kind(),
		DestinationKind:   destination.Endpoint().Kind(),
		OriginUserID:      userOrFallback(origin, authorizedBy),
		DestinationUserID: userOrFallback(destination, authorizedBy),
		AuthorizedBy:      authorizedBy,
	}
	t.OriginRouteID, t.OriginCashBoxID = endpointRefs(origin.Endpoint())
	t.DestinationRouteID, t.DestinationCashBoxID = endpointRefs(destination.Endpoint())
	t.AddDomainEvent(NewTransferExecutedEvent(t))
	return t
}

func userOrFallback(a Account, fallback uuid.UUID) uuid.UUID {
	if u := a.ResponsibleUser(); u != uuid.Nil {
		return u
	}
	return fallback
}

func endpointRefs(e Endpoint) (routeID, cashBoxID *uuid.UUID) {
	switch v := e.(type) {
	case RouteEndpoint:
		id := v.RouteID
		return &id, nil
	case OwnerEndpoint:
		id := v.CashBoxID
		return nil, &id
	}
	return nil, nil
}

func describe(origin, destination Account, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s to %s %s",
		origin.Endpoint().Kind(), origin.DisplayName(),
		destination.Endpoint().Kind(), destination.DisplayName())
	if note = strings.TrimSpace(note); note != "" {
		b.WriteString(": ")
		b.WriteString(note)
	}
	return b.String()
}

// InvolvesCollector reports whether userID is a collector endpoint of t
func (t *Transfer) InvolvesCollector(userID uuid.UUID) bool {
	return (t.OriginKind == EndpointCollector && t.OriginUserID == userID) ||
		(t.DestinationKind == EndpointCollector && t.DestinationUserID == userID)
}
