package treasury

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// fakeOwnerBoxes keeps owner boxes in memory
type fakeOwnerBoxes struct {
	boxes     map[uuid.UUID]*treasury.OwnerCashBox
	updateErr error
}

func (f *fakeOwnerBoxes) FindByID(_ context.Context, id uuid.UUID) (*treasury.OwnerCashBox, error) {
	if b, ok := f.boxes[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, nil
}

func (f *fakeOwnerBoxes) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*treasury.OwnerCashBox, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeOwnerBoxes) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]treasury.OwnerCashBox, error) {
	var out []treasury.OwnerCashBox
	for _, b := range f.boxes {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeOwnerBoxes) CreateIfAbsent(_ context.Context, box *treasury.OwnerCashBox) (bool, error) {
	for _, b := range f.boxes {
		if b.OwnerID == box.OwnerID && b.Currency == box.Currency {
			return false, nil
		}
	}
	c := *box
	f.boxes[box.ID] = &c
	return true, nil
}

func (f *fakeOwnerBoxes) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.boxes[id]
	if !ok {
		return treasury.ErrAccountNotFound
	}
	b.Balance = balance
	return nil
}

// fakeRouteBoxes keeps route boxes in memory
type fakeRouteBoxes struct {
	boxes map[uuid.UUID]*treasury.RouteCashBox // by route id
}

func (f *fakeRouteBoxes) FindByRoute(_ context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	if b, ok := f.boxes[routeID]; ok {
		c := *b
		return &c, nil
	}
	return nil, nil
}

func (f *fakeRouteBoxes) FindByRouteForUpdate(ctx context.Context, routeID uuid.UUID) (*treasury.RouteCashBox, error) {
	return f.FindByRoute(ctx, routeID)
}

func (f *fakeRouteBoxes) CreateIfAbsent(_ context.Context, box *treasury.RouteCashBox) (bool, error) {
	if _, ok := f.boxes[box.RouteID]; ok {
		return false, nil
	}
	c := *box
	f.boxes[box.RouteID] = &c
	return true, nil
}

func (f *fakeRouteBoxes) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	for _, b := range f.boxes {
		if b.ID == id {
			b.Balance = balance
			return nil
		}
	}
	return treasury.ErrAccountNotFound
}

// fakeTransfers keeps transfers in memory
type fakeTransfers struct {
	items []treasury.Transfer
}

func (f *fakeTransfers) Create(_ context.Context, t *treasury.Transfer) error {
	f.items = append(f.items, *t)
	return nil
}

func (f *fakeTransfers) FindByID(_ context.Context, id uuid.UUID) (*treasury.Transfer, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func (f *fakeTransfers) FindAll(_ context.Context, filter treasury.TransferFilter) ([]treasury.Transfer, int64, error) {
	var out []treasury.Transfer
	for _, t := range f.items {
		if filter.UserID != nil && t.OriginUserID != *filter.UserID && t.DestinationUserID != *filter.UserID {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

// fakeLedger keeps ledger rows in memory
type fakeLedger struct {
	items []treasury.LedgerTransaction
}

func (f *fakeLedger) Create(_ context.Context, tx *treasury.LedgerTransaction) error {
	f.items = append(f.items, *tx)
	return nil
}

func (f *fakeLedger) FindByUser(_ context.Context, userID uuid.UUID, _ shared.Page) ([]treasury.LedgerTransaction, int64, error) {
	var out []treasury.LedgerTransaction
	for _, tx := range f.items {
		if tx.OriginUserID == userID {
			out = append(out, tx)
		}
	}
	return out, int64(len(out)), nil
}

// fakeCollectorLedger derives collector sums from stored transfers plus a
// fixed base per collector
type fakeCollectorLedger struct {
	base      map[uuid.UUID]treasury.CollectorLedger
	transfers *fakeTransfers
}

func (f *fakeCollectorLedger) CollectorLedger(_ context.Context, collectorID uuid.UUID, currency valueobject.Currency) (treasury.CollectorLedger, error) {
	l := f.base[collectorID]
	l.CollectorID = collectorID
	l.Currency = currency
	for _, t := range f.transfers.items {
		if currency != "" && t.Currency != currency {
			continue
		}
		if t.DestinationKind == treasury.EndpointCollector && t.DestinationUserID == collectorID {
			l.TransfersReceived = l.TransfersReceived.Add(t.Amount)
		}
		if t.OriginKind == treasury.EndpointCollector && t.OriginUserID == collectorID {
			l.TransfersSent = l.TransfersSent.Add(t.Amount)
		}
	}
	return l, nil
}

// fakeDirectory holds the registries
type fakeDirectory struct {
	routes     map[uuid.UUID]treasury.Route
	owners     map[uuid.UUID]treasury.Owner
	collectors map[uuid.UUID]treasury.Collector
	currencies []valueobject.Currency
	err        error
}

func (d *fakeDirectory) FindRoute(_ context.Context, id uuid.UUID) (*treasury.Route, error) {
	if d.err != nil {
		return nil, d.err
	}
	if r, ok := d.routes[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (d *fakeDirectory) ListActiveRoutes(_ context.Context) ([]treasury.Route, error) {
	var out []treasury.Route
	for _, r := range d.routes {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *fakeDirectory) FindOwner(_ context.Context, id uuid.UUID) (*treasury.Owner, error) {
	if o, ok := d.owners[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (d *fakeDirectory) FindCollector(_ context.Context, userID uuid.UUID) (*treasury.Collector, error) {
	if c, ok := d.collectors[userID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (d *fakeDirectory) ActiveCurrencies(_ context.Context) ([]valueobject.Currency, error) {
	return d.currencies, nil
}

// world is a complete in-memory treasury
type world struct {
	ownerBoxes *fakeOwnerBoxes
	routeBoxes *fakeRouteBoxes
	transfers  *fakeTransfers
	ledger     *fakeLedger
	collectors *fakeCollectorLedger
	directory  *fakeDirectory
	publisher  *recordingPublisher

	ownerID, ownerUser, routeID, collectorID uuid.UUID
}

func newWorld() *world {
	w := &world{
		ownerBoxes:  &fakeOwnerBoxes{boxes: map[uuid.UUID]*treasury.OwnerCashBox{}},
		routeBoxes:  &fakeRouteBoxes{boxes: map[uuid.UUID]*treasury.RouteCashBox{}},
		transfers:   &fakeTransfers{},
		ledger:      &fakeLedger{},
		publisher:   &recordingPublisher{},
		ownerID:     uuid.New(),
		ownerUser:   uuid.New(),
		routeID:     uuid.New(),
		collectorID: uuid.New(),
	}
	w.collectors = &fakeCollectorLedger{base: map[uuid.UUID]treasury.CollectorLedger{}, transfers: w.transfers}
	w.directory = &fakeDirectory{
		routes:     map[uuid.UUID]treasury.Route{w.routeID: {ID: w.routeID, Name: "North", Currency: "COP", Active: true}},
		owners:     map[uuid.UUID]treasury.Owner{w.ownerID: {ID: w.ownerID, UserID: w.ownerUser, Name: "Carlos"}},
		collectors: map[uuid.UUID]treasury.Collector{w.collectorID: {UserID: w.collectorID, Name: "Ana", Active: true}},
		currencies: []valueobject.Currency{"COP", "USD"},
	}
	return w
}

func (w *world) repositories() Repositories {
	return Repositories{
		OwnerCashBoxes:     w.ownerBoxes,
		RouteCashBoxes:     w.routeBoxes,
		Transfers:          w.transfers,
		LedgerTransactions: w.ledger,
		CollectorLedger:    w.collectors,
		Directory:          w.directory,
	}
}

func (w *world) seedOwnerBox(currency string, balance int64) *treasury.OwnerCashBox {
	box := treasury.NewOwnerCashBox(w.ownerID, valueobject.Currency(currency), fixedNow)
	box.Balance = decimal.NewFromInt(balance)
	w.ownerBoxes.boxes[box.ID] = box
	return box
}

func (w *world) seedRouteBox(balance int64) *treasury.RouteCashBox {
	box := treasury.NewRouteCashBox(w.routeID, "COP", fixedNow)
	box.Balance = decimal.NewFromInt(balance)
	w.routeBoxes.boxes[w.routeID] = box
	return box
}

var errStorage = errors.New("storage unavailable")
