package treasury

import (
	"context"

	"github.com/fieldcredit/backend/internal/domain/shared/valueobject"
	"github.com/fieldcredit/backend/internal/domain/treasury"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CollectorBalanceService projects a collector's cash on hand from history.
// The result is recomputed on every call and may be negative.
type CollectorBalanceService struct {
	reader    treasury.CollectorLedgerReader
	directory treasury.Directory
}

// NewCollectorBalanceService creates a new CollectorBalanceService
func NewCollectorBalanceService(reader treasury.CollectorLedgerReader, directory treasury.Directory) *CollectorBalanceService {
	return &CollectorBalanceService{reader: reader, directory: directory}
}

// Ledger returns the sums behind a collector's balance. An empty currency
// spans all currencies.
func (s *CollectorBalanceService) Ledger(ctx context.Context, collectorID uuid.UUID, currency string) (treasury.CollectorLedger, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CollectorBalanceService", "Ledger",
		attribute.String("collector_id", collectorID.String()),
		attribute.String("currency", currency))
	defer span.End()

	var code valueobject.Currency
	if currency != "" {
		c, err := valueobject.NewCurrency(currency)
		if err != nil {
			telemetry.RecordError(span, err)
			return treasury.CollectorLedger{}, err
		}
		code = c
	}
	collector, err := s.directory.FindCollector(ctx, collectorID)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("failed to load collector",
			zap.String("collector_id", collectorID.String()),
			zap.Error(err))
		return treasury.CollectorLedger{}, err
	}
	if collector == nil {
		return treasury.CollectorLedger{}, treasury.ErrCollectorNotFound
	}
	ledger, err := s.reader.CollectorLedger(ctx, collectorID, code)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("failed to project collector ledger",
			zap.String("collector_id", collectorID.String()),
			zap.Error(err))
		return treasury.CollectorLedger{}, err
	}
	return ledger, nil
}

// Balance returns collections + transfers received - expenses - loans
// disbursed - transfers sent
func (s *CollectorBalanceService) Balance(ctx context.Context, collectorID uuid.UUID, currency string) (CollectorBalanceResponse, error) {
	ledger, err := s.Ledger(ctx, collectorID, currency)
	if err != nil {
		return CollectorBalanceResponse{}, err
	}
	balance := ledger.Balance()
	if balance.IsNegative() {
		logger.L(ctx).Warn("collector balance is negative",
			zap.String("collector_id", collectorID.String()),
			zap.String("currency", ledger.Currency.String()),
			zap.String("balance", balance.StringFixed(valueobject.MoneyScale)))
	}
	return CollectorBalanceResponse{Ledger: ledger, Balance: balance}, nil
}
