package treasury

import (
	"time"

	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferCommand asks the engine to move funds between two endpoints.
// AuthorizingUser is the authenticated caller; it is never read from
// ambient state.
type TransferCommand struct {
	Origin          treasury.Endpoint
	Destination     treasury.Endpoint
	Amount          decimal.Decimal
	Currency        string
	Description     string
	AuthorizingUser uuid.UUID
}

// LedgerEntryInput registers an income or expense for a user
type LedgerEntryInput struct {
	UserID      uuid.UUID
	RouteID     *uuid.UUID
	Concept     string
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// CollectorBalanceResponse is the projected balance with its breakdown
type CollectorBalanceResponse struct {
	Ledger  treasury.CollectorLedger `json:"ledger"`
	Balance decimal.Decimal          `json:"balance"`
}

// CashBoxResponse is a cash box as returned to API clients
type CashBoxResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	HolderID  uuid.UUID       `json:"holder_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToOwnerCashBoxResponses converts owner boxes
func ToOwnerCashBoxResponses(boxes []treasury.OwnerCashBox) []CashBoxResponse {
	out := make([]CashBoxResponse, len(boxes))
	for i, b := range boxes {
		out[i] = CashBoxResponse{
			ID:        b.ID,
			Kind:      treasury.EndpointOwner.String(),
			HolderID:  b.OwnerID,
			Currency:  b.Currency.String(),
			Balance:   b.Balance,
			UpdatedAt: b.UpdatedAt,
		}
	}
	return out
}

// ToRouteCashBoxResponse converts a route box
func ToRouteCashBoxResponse(b *treasury.RouteCashBox) CashBoxResponse {
	return CashBoxResponse{
		ID:        b.ID,
		Kind:      treasury.EndpointRoute.String(),
		HolderID:  b.RouteID,
		Currency:  b.Currency.String(),
		Balance:   b.Balance,
		UpdatedAt: b.UpdatedAt,
	}
}

// TransferResponse is a transfer as returned to API clients
type TransferResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Nature               string          `json:"nature"`
	Concept              string          `json:"concept"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	OccurredAt           time.Time       `json:"occurred_at"`
	OriginKind           string          `json:"origin_kind"`
	DestinationKind      string          `json:"destination_kind"`
	OriginUserID         uuid.UUID       `json:"origin_user_id"`
	DestinationUserID    uuid.UUID       `json:"destination_user_id"`
	OriginRouteID        *uuid.UUID      `json:"origin_route_id,omitempty"`
	DestinationRouteID   *uuid.UUID      `json:"destination_route_id,omitempty"`
	OriginCashBoxID      *uuid.UUID      `json:"origin_cash_box_id,omitempty"`
	DestinationCashBoxID *uuid.UUID      `json:"destination_cash_box_id,omitempty"`
	AuthorizedBy         uuid.UUID       `json:"authorized_by"`
}

// ToTransferResponse converts a transfer
func ToTransferResponse(t *treasury.Transfer) TransferResponse {
	return TransferResponse{
		ID:                   t.ID,
		Nature:               string(t.Nature()),
		Concept:              t.Concept,
		Description:          t.Description,
		Amount:               t.Amount,
		Currency:             t.Currency.String(),
		OccurredAt:           t.OccurredAt,
		OriginKind:           t.OriginKind.String(),
		DestinationKind:      t.DestinationKind.String(),
		OriginUserID:         t.OriginUserID,
		DestinationUserID:    t.DestinationUserID,
		OriginRouteID:        t.OriginRouteID,
		DestinationRouteID:   t.DestinationRouteID,
		OriginCashBoxID:      t.OriginCashBoxID,
		DestinationCashBoxID: t.DestinationCashBoxID,
		AuthorizedBy:         t.AuthorizedBy,
	}
}

// ToTransferResponses converts a list of transfers
func ToTransferResponses(transfers []treasury.Transfer) []TransferResponse {
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = ToTransferResponse(&transfers[i])
	}
	return out
}

// LedgerTransactionResponse is an income or expense as returned to API clients
type LedgerTransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Nature      string          `json:"nature"`
	Concept     string          `json:"concept"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	OccurredAt  time.Time       `json:"occurred_at"`
	UserID      uuid.UUID       `json:"user_id"`
	RouteID     *uuid.UUID      `json:"route_id,omitempty"`
}

// ToLedgerTransactionResponse converts a ledger transaction
func ToLedgerTransactionResponse(tx *treasury.LedgerTransaction) LedgerTransactionResponse {
	return LedgerTransactionResponse{
		ID:          tx.ID,
		Nature:      string(tx.Nature),
		Concept:     tx.Concept,
		Description: tx.Description,
		Amount:      tx.Amount,
		Currency:    tx.Currency.String(),
		OccurredAt:  tx.OccurredAt,
		UserID:      tx.OriginUserID,
		RouteID:     tx.RouteID,
	}
}

// ToLedgerTransactionResponses converts a list of ledger transactions
func ToLedgerTransactionResponses(entries []treasury.LedgerTransaction) []LedgerTransactionResponse {
	out := make([]LedgerTransactionResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerTransactionResponse(&entries[i])
	}
	return out
}
