package router

import (
	"github.com/fieldcredit/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the API's endpoint handlers
type Handlers struct {
	System    *handler.SystemHandler
	Loans     *handler.LoanHandler
	CashBoxes *handler.CashBoxHandler
	Transfers *handler.TransferHandler
	Ledger    *handler.LedgerHandler
	Collector *handler.CollectorHandler
}

// LendingRoutes builds the loan and payment routes. Money-moving POSTs run
// behind idempotent when it is set.
func LendingRoutes(h Handlers, idempotent gin.HandlerFunc) *DomainGroup {
	loans := NewDomainGroup("lending", "/loans")
	loans.POST("", withGuard(idempotent, h.Loans.Disburse)...)
	loans.GET("", h.Loans.List)
	loans.POST("/overdue/recalculate", h.Loans.RecalculateOverdue)
	loans.GET("/overdue/last-run", h.Loans.LastOverdueRun)
	loans.GET("/:id", h.Loans.Get)
	loans.GET("/:id/payments", h.Loans.ListPayments)
	loans.POST("/:id/payments", withGuard(idempotent, h.Loans.ApplyPayment)...)
	loans.POST("/:id/cancel", h.Loans.Cancel)
	loans.POST("/:id/default", h.Loans.MarkDefault)
	loans.POST("/:id/reactivate", h.Loans.Reactivate)
	return loans
}

// TreasuryRoutes builds the cash box, transfer, ledger and collector routes
func TreasuryRoutes(h Handlers, idempotent gin.HandlerFunc) []*DomainGroup {
	owners := NewDomainGroup("owners", "/owners")
	owners.POST("/:id/cash-boxes", h.CashBoxes.EnsureOwnerBoxes)
	owners.GET("/:id/cash-boxes", h.CashBoxes.ListOwnerBoxes)

	routes := NewDomainGroup("routes", "/routes")
	routes.POST("/cash-boxes", h.CashBoxes.EnsureAllRouteBoxes)
	routes.POST("/:id/cash-box", h.CashBoxes.EnsureRouteBox)
	routes.GET("/:id/cash-box", h.CashBoxes.GetRouteBox)

	transfers := NewDomainGroup("transfers", "/transfers")
	transfers.POST("", withGuard(idempotent, h.Transfers.Create)...)
	transfers.GET("", h.Transfers.List)
	transfers.GET("/:id", h.Transfers.Get)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.GET("", h.Ledger.List)
	ledger.POST("/expenses", withGuard(idempotent, h.Ledger.RecordExpense)...)
	ledger.POST("/incomes", withGuard(idempotent, h.Ledger.RecordIncome)...)

	collectors := NewDomainGroup("collectors", "/collectors")
	collectors.GET("/:id/balance", h.Collector.Balance)

	return []*DomainGroup{owners, routes, transfers, ledger, collectors}
}

// SystemRoutes builds the unauthenticated health routes under the API prefix
func SystemRoutes(h Handlers) *DomainGroup {
	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.System.Ping)
	system.GET("/info", h.System.GetSystemInfo)
	return system
}

func withGuard(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
