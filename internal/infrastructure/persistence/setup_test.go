package persistence

import (
	"testing"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps the in-memory database shared across queries.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

func newTestLoan(t *testing.T, collectorID uuid.UUID, principal int64, currency string) *lending.LoanAccount {
	t.Helper()
	loan, err := lending.NewLoanAccount(lending.DisbursalTerms{
		BorrowerID:   uuid.New(),
		RouteID:      uuid.New(),
		CollectorID:  collectorID,
		Principal:    decimal.NewFromInt(principal),
		InterestRate: decimal.NewFromInt(20),
		Installments: 20,
		Frequency:    lending.FrequencyDaily,
		Currency:     currency,
		StartDate:    testNow,
	}, testNow)
	require.NoError(t, err)
	return loan
}

func newRouteBox(routeID uuid.UUID) *treasury.RouteCashBox {
	return treasury.NewRouteCashBox(routeID, "COP", testNow)
}
