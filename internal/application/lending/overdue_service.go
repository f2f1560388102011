package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldcredit/backend/internal/domain/lending"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultOverdueBatchSize is the number of loans read per keyset page
const DefaultOverdueBatchSize = 500

// OverdueService recomputes the overdue counter of active loans.
// A run only writes counters that changed, so repeated runs are harmless.
type OverdueService struct {
	loans     lending.LoanAccountRepository
	batchSize int
	now       func() time.Time
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(loans lending.LoanAccountRepository) *OverdueService {
	return &OverdueService{loans: loans, batchSize: DefaultOverdueBatchSize, now: time.Now}
}

// SetBatchSize changes the keyset page size
func (s *OverdueService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// SetClock overrides the time source
func (s *OverdueService) SetClock(now func() time.Time) {
	s.now = now
}

// RecalculateAll sweeps every ACTIVE loan using today as the reference day.
// A zero today uses the service clock.
func (s *OverdueService) RecalculateAll(ctx context.Context, today time.Time) (OverdueSweepResult, error) {
	if today.IsZero() {
		today = s.now()
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "OverdueService", "RecalculateAll",
		attribute.String("today", today.Format(time.DateOnly)))
	defer span.End()

	var result OverdueSweepResult
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return result, err
		}
		batch, err := s.loans.FindActiveAfter(ctx, after, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			return result, fmt.Errorf("load active loans: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		for i := range batch {
			loan := &batch[i]
			result.Scanned++
			if !loan.RecalculateOverdue(today) {
				continue
			}
			applied, err := s.loans.UpdateOverdue(ctx, loan.ID, loan.Version, loan.InstallmentsOverdue)
			if err != nil {
				telemetry.RecordError(span, err)
				return result, fmt.Errorf("update overdue for loan %s: %w", loan.ID, err)
			}
			if !applied {
				result.Skipped++
				logger.L(ctx).Debug("loan changed during overdue sweep, left for the next run",
					zap.String("loan_id", loan.ID.String()))
				continue
			}
			result.Updated++
		}
		after = batch[len(batch)-1].ID
		if len(batch) < s.batchSize {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("scanned", result.Scanned),
		attribute.Int("updated", result.Updated),
		attribute.Int("skipped", result.Skipped))
	logger.L(ctx).Info("overdue recalculation finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
