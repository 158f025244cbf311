package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	sessionkit "github.com/fintrack/sessionkit"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot sessionkit.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() sessionkit.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := sessionkit.MetricsSnapshot{
		Counters: make(map[sessionkit.MetricID]uint64, len(f.snapshot.Counters)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	return out
}

func (f *fakeSource) EventsDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("sessionkit-test")

	src := &fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters: map[sessionkit.MetricID]uint64{
				sessionkit.MetricLoginSuccess: 3,
				sessionkit.MetricRetryIssued:  2,
			},
		},
		dropped: 1,
	}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected collected metrics, got none")
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("sessionkit-test")

	if _, err := NewExporterFromSource(meter, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
	if _, err := NewExporterFromSource(nil, &fakeSource{}); err == nil {
		t.Fatal("expected error for nil meter")
	}
	if _, err := NewExporter(meter, nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("sessionkit-test")

	src := &fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters: map[sessionkit.MetricID]uint64{
				sessionkit.MetricLoginSuccess: 1,
			},
		},
	}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[sessionkit.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
