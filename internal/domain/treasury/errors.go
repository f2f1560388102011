package treasury

import (
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
)

var (
	ErrAccountNotFound    = shared.NewDomainError("ACCOUNT_NOT_FOUND", "Cash account not found")
	ErrCurrencyMismatch   = valueobject.ErrCurrencyMismatch
	ErrInsufficientFunds  = shared.NewDomainError("INSUFFICIENT_FUNDS", "Insufficient funds in origin account")
	ErrInvalidAmount      = shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive with at most two decimals")
	ErrInvalidEndpoint    = shared.NewDomainError("INVALID_ENDPOINT", "Unknown transfer endpoint kind")
	ErrSameEndpoint       = shared.NewDomainError("INVALID_ENDPOINTS", "Origin and destination must differ")
	ErrInvalidNature      = shared.NewDomainError("INVALID_NATURE", "Ledger entries must be INCOME or EXPENSE")
	ErrMissingConcept     = shared.NewDomainError("MISSING_CONCEPT", "Ledger entry concept is required")
	ErrRouteNotFound      = shared.NewDomainError("ROUTE_NOT_FOUND", "Route not found")
	ErrOwnerNotFound      = shared.NewDomainError("OWNER_NOT_FOUND", "Owner not found")
	ErrCollectorNotFound  = shared.NewDomainError("COLLECTOR_NOT_FOUND", "Collector not found")
	ErrTransferNotFound   = shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
	ErrNoActiveCurrencies = shared.NewDomainError("NO_ACTIVE_CURRENCIES", "No active currencies configured")
)
