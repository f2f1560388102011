package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	applending "github.com/fieldcredit/backend/internal/application/lending"
	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB, sqlDB: mockDB}, mock, mockDB
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))
	assert.GreaterOrEqual(t, db.Stats().OpenConnections, 0)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_SchemaVersion(t *testing.T) {
	ctx := context.Background()
	const regclass = `SELECT to_regclass\('schema_migrations'\) IS NOT NULL`
	const version = `SELECT version, dirty FROM schema_migrations LIMIT 1`

	t.Run("migrated", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		mock.ExpectQuery(regclass).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(version).WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).AddRow(2, false))

		v, dirty, err := db.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint(2), v)
		assert.False(t, dirty)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bookkeeping table missing", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		mock.ExpectQuery(regclass).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, _, err := db.SchemaVersion(ctx)
		assert.ErrorIs(t, err, ErrSchemaNotMigrated)
	})

	t.Run("no version row", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		mock.ExpectQuery(regclass).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(version).WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}))

		_, _, err := db.SchemaVersion(ctx)
		assert.ErrorIs(t, err, ErrSchemaNotMigrated)
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		mock.ExpectQuery(regclass).WillReturnError(errors.New("connection reset"))

		_, _, err := db.SchemaVersion(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSchemaNotMigrated)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

// ============================================
// Transaction scopes
// ============================================

func TestGormLendingTransactionScope_LocksLoanRow(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loan_accounts" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	scope := NewGormLendingTransactionScope(db.DB)
	err := scope.Execute(context.Background(), func(repos applending.TransactionalRepositories) error {
		loan, err := repos.Loans().FindByIDForUpdate(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, loan)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLendingTransactionScope_RollsBackOnError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	scope := NewGormLendingTransactionScope(db.DB)
	err := scope.Execute(context.Background(), func(repos applending.TransactionalRepositories) error {
		return lending.ErrLoanNotActive
	})
	assert.ErrorIs(t, err, lending.ErrLoanNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLendingTransactionScope_CommitFailure(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	commitErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "loan_accounts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(commitErr)

	loan := &lending.LoanAccount{Outstanding: decimal.NewFromInt(10), Status: lending.LoanStatusActive}
	loan.ID = uuid.New()

	scope := NewGormLendingTransactionScope(db.DB)
	err := scope.Execute(context.Background(), func(repos applending.TransactionalRepositories) error {
		return repos.Loans().Save(context.Background(), loan)
	})
	assert.ErrorIs(t, err, commitErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTreasuryTransactionScope_SharesTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	routeID := uuid.New()

	scope := NewGormTreasuryTransactionScope(db)
	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos apptreasury.TransactionalRepositories) error {
		box, err := repos.RouteCashBoxes().FindByRouteForUpdate(ctx, routeID)
		require.NoError(t, err)
		assert.Nil(t, box)
		_, err = repos.RouteCashBoxes().CreateIfAbsent(ctx, newRouteBox(routeID))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	box, err := NewGormRouteCashBoxRepository(db).FindByRoute(ctx, routeID)
	require.NoError(t, err)
	assert.Nil(t, box, "insert must be rolled back")
}
