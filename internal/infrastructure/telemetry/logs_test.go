package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memoryExporter keeps exported record bodies
type memoryExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) Bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

// ============================================
// LoggerProvider
// ============================================

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "fieldcredit-test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.Enabled())

	base := zap.NewNop()
	bridged, err := lp.Bridge(base, "fieldcredit-test", zapcore.InfoLevel)
	require.NoError(t, err)
	assert.Same(t, base, bridged)

	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

// ============================================
// Bridge
// ============================================

func TestBridgeLogger_TeesAtLevel(t *testing.T) {
	exporter := &memoryExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	core, local := observer.New(zapcore.DebugLevel)
	log, err := BridgeLogger(zap.New(core), provider, "fieldcredit-test", zapcore.InfoLevel)
	require.NoError(t, err)

	log.Debug("sweep started")
	log.Info("payment applied", zap.String("loan_id", "L-1"))
	log.Warn("collector balance is negative")

	assert.Equal(t, 3, local.Len())
	assert.Equal(t, []string{"payment applied", "collector balance is negative"}, exporter.Bodies())
}
