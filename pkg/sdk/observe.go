package brewdesk

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// operation statuses
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusError    = "error"
)

// sdkMetrics holds the prometheus collectors registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	answers    *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewdesk",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by type and status (ok, degraded, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brewdesk",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"operation"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewdesk",
			Subsystem: "sdk",
			Name:      "answers_total",
			Help:      "Answers by used intent and whether the text was generated.",
		}, []string{"intent", "generated"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.answers); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or adopts the one already registered,
// so several clients can share a registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("brewdesk: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("brewdesk: register metric: %w", err)
	}
	return nil
}

// observer logs and meters SDK operations. A nil logger or registry disables that side.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one operation. status overrides the ok/error label when non-empty.
func (o *observer) observe(op string, start time.Time, status string, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	if status == "" {
		status = statusOK
		if err != nil {
			status = statusError
		}
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch {
	case err != nil:
		o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
	case status != statusOK:
		o.logger.Info("operation "+status, "op", op, "duration", dur)
	default:
		o.logger.Debug("operation completed", "op", op, "duration", dur)
	}
}

// answered records the shape of a successful answer.
func (o *observer) answered(ans Answer) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.answers.WithLabelValues(ans.Intent, strconv.FormatBool(ans.Generated)).Inc()
	}
	if o.logger != nil {
		o.logger.Debug("answer",
			"id", ans.ID,
			"intent", ans.Intent,
			"refs", len(ans.EvidenceRefs),
			"generated", ans.Generated,
			"degraded", ans.Degraded,
		)
	}
}
