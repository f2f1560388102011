package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrPaymentKind = attribute.Key("payment_kind")
	AttrCurrency    = attribute.Key("currency")
	AttrConcept     = attribute.Key("concept")
	AttrOutcome     = attribute.Key("outcome")
	AttrReason      = attribute.Key("reason")
)

// Transfer and sweep outcomes
const (
	OutcomeExecuted = "executed"
	OutcomeRejected = "rejected"
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// SweepDurationBuckets spans a quick sweep up to the default job timeout (seconds)
var SweepDurationBuckets = []float64{0.5, 1, 5, 15, 60, 300, 900, 1800}

// LedgerMetrics counts money movements through the payment processor, the
// transfer engine and the overdue sweep. A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	paymentsApplied   *Counter
	duplicateWarnings *Counter
	transfers         *Counter
	loansMarked       *Counter
	sweepDuration     *Histogram
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{}
	var err error
	if m.paymentsApplied, err = NewCounter(meter,
		"fieldcredit_payments_applied_total", "Payments applied to loan accounts", "{payments}"); err != nil {
		return nil, err
	}
	if m.duplicateWarnings, err = NewCounter(meter,
		"fieldcredit_payment_duplicate_warnings_total", "Payments held back as suspected resubmissions", "{payments}"); err != nil {
		return nil, err
	}
	if m.transfers, err = NewCounter(meter,
		"fieldcredit_transfers_total", "Transfer attempts by concept and outcome", "{transfers}"); err != nil {
		return nil, err
	}
	if m.loansMarked, err = NewCounter(meter,
		"fieldcredit_overdue_counters_updated_total", "Overdue counters rewritten by the sweep", "{loans}"); err != nil {
		return nil, err
	}
	if m.sweepDuration, err = NewHistogram(meter,
		"fieldcredit_overdue_sweep_duration_seconds", "Overdue sweep run time", "s", SweepDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordPaymentApplied counts a committed payment.
func (m *LedgerMetrics) RecordPaymentApplied(ctx context.Context, kind, currency string) {
	if m == nil {
		return
	}
	m.paymentsApplied.Inc(ctx, AttrPaymentKind.String(kind), AttrCurrency.String(currency))
}

// RecordDuplicateWarning counts a payment stopped by the same-day guard.
func (m *LedgerMetrics) RecordDuplicateWarning(ctx context.Context) {
	if m == nil {
		return
	}
	m.duplicateWarnings.Inc(ctx)
}

// RecordTransferExecuted counts a committed transfer.
func (m *LedgerMetrics) RecordTransferExecuted(ctx context.Context, concept, currency string) {
	if m == nil {
		return
	}
	m.transfers.Inc(ctx,
		AttrConcept.String(concept),
		AttrCurrency.String(currency),
		AttrOutcome.String(OutcomeExecuted))
}

// RecordTransferRejected counts a transfer refused with reason, usually a
// domain error code.
func (m *LedgerMetrics) RecordTransferRejected(ctx context.Context, concept, reason string) {
	if m == nil {
		return
	}
	m.transfers.Inc(ctx,
		AttrConcept.String(concept),
		AttrOutcome.String(OutcomeRejected),
		AttrReason.String(reason))
}

// RecordSweep records one overdue sweep run.
func (m *LedgerMetrics) RecordSweep(ctx context.Context, took time.Duration, outcome string, updated int) {
	if m == nil {
		return
	}
	m.sweepDuration.RecordDuration(ctx, took, AttrOutcome.String(outcome))
	if updated > 0 {
		m.loansMarked.Add(ctx, int64(updated))
	}
}
