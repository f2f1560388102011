package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	applending "github.com/fieldcredit/backend/internal/application/lending"
	"github.com/fieldcredit/backend/internal/infrastructure/config"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverdueLockKey is the lock shared by every instance running the sweep
const OverdueLockKey = "fieldcredit:lock:overdue-sweep"

// OverdueRecalculator is the sweep the scheduler triggers
type OverdueRecalculator interface {
	RecalculateAll(ctx context.Context, today time.Time) (applending.OverdueSweepResult, error)
}

// RunRecord describes the last sweep run
type RunRecord struct {
	ID         uuid.UUID                     `json:"id"`
	StartedAt  time.Time                     `json:"started_at"`
	FinishedAt time.Time                     `json:"finished_at"`
	Result     applending.OverdueSweepResult `json:"result"`
	Skipped    bool                          `json:"skipped"`
	Error      string                        `json:"error,omitempty"`
}

// OverdueSweepScheduler runs the overdue recalculation on a cron schedule.
// A distributed lock keeps two instances from sweeping at once; the sweep
// itself is idempotent so a missed or repeated run is harmless.
type OverdueSweepScheduler struct {
	cron    *cron.Cron
	sweeper OverdueRecalculator
	locker  Locker
	cfg     config.SchedulerConfig
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
	now     func() time.Time

	mu      sync.Mutex
	last    *RunRecord
	entryID cron.EntryID
	started bool
}

// NewOverdueSweepScheduler creates a scheduler. It validates the cron
// expression up front.
func NewOverdueSweepScheduler(sweeper OverdueRecalculator, locker Locker, cfg config.SchedulerConfig, log *zap.Logger) (*OverdueSweepScheduler, error) {
	if _, err := cron.ParseStandard(cfg.OverdueCronSchedule); err != nil {
		return nil, fmt.Errorf("%w: overdue schedule %q: %v", ErrInvalidConfig, cfg.OverdueCronSchedule, err)
	}
	if cfg.JobTimeout <= 0 || cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("%w: job timeout and lock ttl must be positive", ErrInvalidConfig)
	}
	if cfg.LockTTL < cfg.JobTimeout {
		return nil, fmt.Errorf("%w: lock ttl %s is shorter than job timeout %s", ErrInvalidConfig, cfg.LockTTL, cfg.JobTimeout)
	}
	cronLog := cronLogger{log.Sugar().Named("cron")}
	return &OverdueSweepScheduler{
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		sweeper: sweeper,
		locker:  locker,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
	}, nil
}

// SetMetrics sets the sweep duration and counter instruments
func (s *OverdueSweepScheduler) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// Start registers the sweep and starts the cron loop
func (s *OverdueSweepScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	id, err := s.cron.AddFunc(s.cfg.OverdueCronSchedule, func() {
		_, _ = s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule overdue sweep: %w", err)
	}
	s.entryID = id
	s.started = true
	s.cron.Start()

	s.logger.Info("overdue sweep scheduled",
		zap.String("schedule", s.cfg.OverdueCronSchedule),
		zap.Time("next_run", s.cron.Entry(id).Next))
	return nil
}

// Stop stops the cron loop and waits for a running sweep until ctx is done
func (s *OverdueSweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("overdue sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one sweep under the lock. When another runner holds
// the lock the run is skipped and ErrLockNotObtained returned.
func (s *OverdueSweepScheduler) RunOnce(ctx context.Context) (RunRecord, error) {
	record := RunRecord{ID: uuid.New(), StartedAt: s.now()}
	log := s.logger.With(zap.String("run_id", record.ID.String()))
	ctx = logger.WithContext(ctx, log)

	lock, err := s.locker.Obtain(ctx, OverdueLockKey, s.cfg.LockTTL)
	if err != nil {
		record.FinishedAt = s.now()
		if errors.Is(err, ErrLockNotObtained) {
			record.Skipped = true
			s.metrics.RecordSweep(ctx, 0, telemetry.OutcomeSkipped, 0)
			log.Info("overdue sweep skipped, lock held elsewhere")
		} else {
			record.Error = err.Error()
			log.Error("overdue sweep lock failed", zap.Error(err))
		}
		s.remember(record)
		return record, err
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Warn("overdue sweep lock release failed", zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	result, err := s.sweeper.RecalculateAll(runCtx, record.StartedAt)
	record.Result = result
	record.FinishedAt = s.now()
	took := record.FinishedAt.Sub(record.StartedAt)
	if err != nil {
		record.Error = err.Error()
		s.metrics.RecordSweep(ctx, took, telemetry.OutcomeFailed, result.Updated)
		log.Error("overdue sweep failed",
			zap.Int("scanned", result.Scanned),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Error(err))
	} else {
		s.metrics.RecordSweep(ctx, took, telemetry.OutcomeSuccess, result.Updated)
		log.Info("overdue sweep finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Duration("took", took))
	}
	s.remember(record)
	return record, err
}

// LastRun returns the most recent run, if any
func (s *OverdueSweepScheduler) LastRun() (RunRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return RunRecord{}, false
	}
	return *s.last, true
}

// NextRun returns the next scheduled time, zero when not started
func (s *OverdueSweepScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *OverdueSweepScheduler) remember(r RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &r
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
