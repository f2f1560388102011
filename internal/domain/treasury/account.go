package treasury

import (
	"fmt"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a resolved transfer endpoint. Stored accounts mutate a cash
// box balance; projected accounts only check availability.
type Account interface {
	Endpoint() Endpoint
	Currency() valueobject.Currency
	AvailableBalance() decimal.Decimal
	Debit(amount decimal.Decimal, now time.Time) error
	Credit(amount decimal.Decimal, now time.Time) error
	// DisplayName is the human context used in transfer descriptions
	DisplayName() string
	// ResponsibleUser is the user behind the endpoint, uuid.Nil if none
	ResponsibleUser() uuid.UUID
}

// StoredAccount wraps a cash box loaded inside the transfer transaction
type StoredAccount struct {
	endpoint Endpoint
	box      *CashBox
	display  string
	user     uuid.UUID
}

// NewOwnerAccount wraps an owner cash box; user is the owner's user id
func NewOwnerAccount(box *OwnerCashBox, ownerName string, user uuid.UUID) *StoredAccount {
	return &StoredAccount{
		endpoint: OwnerEndpoint{CashBoxID: box.ID},
		box:      &box.CashBox,
		display:  ownerName,
		user:     user,
	}
}

// NewRouteAccount wraps a route cash box. Routes have no responsible user.
func NewRouteAccount(box *RouteCashBox, routeName string) *StoredAccount {
	return &StoredAccount{
		endpoint: RouteEndpoint{RouteID: box.RouteID},
		box:      &box.CashBox,
		display:  routeName,
	}
}

func (a *StoredAccount) Endpoint() Endpoint                { return a.endpoint }
func (a *StoredAccount) Currency() valueobject.Currency    { return a.box.Currency }
func (a *StoredAccount) AvailableBalance() decimal.Decimal { return a.box.Balance }
func (a *StoredAccount) DisplayName() string               { return a.display }
func (a *StoredAccount) ResponsibleUser() uuid.UUID        { return a.user }

// CashBox exposes the underlying box for persistence
func (a *StoredAccount) CashBox() *CashBox { return a.box }

func (a *StoredAccount) Debit(amount decimal.Decimal, now time.Time) error {
	return a.box.Debit(amount, now)
}

func (a *StoredAccount) Credit(amount decimal.Decimal, now time.Time) error {
	return a.box.Credit(amount, now)
}

// ProjectedAccount is a collector's balance recomputed from history.
// Nothing is persisted; debits and credits only adjust the in-memory view.
type ProjectedAccount struct {
	ledger  CollectorLedger
	display string
	delta   decimal.Decimal
}

// NewCollectorAccount wraps a currency-filtered collector ledger
func NewCollectorAccount(ledger CollectorLedger, collectorName string) *ProjectedAccount {
	return &ProjectedAccount{ledger: ledger, display: collectorName, delta: decimal.Zero}
}

func (a *ProjectedAccount) Endpoint() Endpoint {
	return CollectorEndpoint{UserID: a.ledger.CollectorID}
}
func (a *ProjectedAccount) Currency() valueobject.Currency { return a.ledger.Currency }
func (a *ProjectedAccount) DisplayName() string            { return a.display }
func (a *ProjectedAccount) ResponsibleUser() uuid.UUID     { return a.ledger.CollectorID }

func (a *ProjectedAccount) AvailableBalance() decimal.Decimal {
	return a.ledger.Balance().Add(a.delta)
}

func (a *ProjectedAccount) Debit(amount decimal.Decimal, _ time.Time) error {
	if !valueobject.IsValidAmount(amount) {
		return ErrInvalidAmount
	}
	if a.AvailableBalance().LessThan(amount) {
		return ErrInsufficientFunds.WithMessage(fmt.Sprintf(
			"Collector balance %s %s is below %s",
			a.AvailableBalance().StringFixed(valueobject.MoneyScale), a.ledger.Currency, amount.StringFixed(valueobject.MoneyScale)))
	}
	a.delta = a.delta.Sub(amount)
	return nil
}

func (a *ProjectedAccount) Credit(amount decimal.Decimal, _ time.Time) error {
	if !valueobject.IsValidAmount(amount) {
		return ErrInvalidAmount
	}
	a.delta = a.delta.Add(amount)
	return nil
}

var (
	_ Account = (*StoredAccount)(nil)
	_ Account = (*ProjectedAccount)(nil)
)
