package ports

import "context"

// MetricsCollector records quantitative observability signals. Standard metric
// names include:
//   - Counters:
//     cadence_keyframes_total{chain="...", status="settled|failed"}
//     cadence_dispatches_total{target="...", status="settled|failed"}
//   - Gauges:
//     cadence_cursor{chain="..."}
//   - Histograms:
//     cadence_keyframe_duration_seconds{chain="..."}
//     cadence_dispatch_duration_seconds{target="..."}
type MetricsCollector interface {
	IncCounter(ctx context.Context, name string, labels map[string]string)
	SetGauge(ctx context.Context, name string, value float64, labels map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, labels map[string]string)
}

// Metric names emitted by the driver.
const (
	MetricKeyframesTotal          = "cadence_keyframes_total"
	MetricDispatchesTotal         = "cadence_dispatches_total"
	MetricCursor                  = "cadence_cursor"
	MetricKeyframeDurationSeconds = "cadence_keyframe_duration_seconds"
	MetricDispatchDurationSeconds = "cadence_dispatch_duration_seconds"
)
