// Package metrics exposes the operation metrics every service records.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the lifecycle of a service operation.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
}

// DispatchMetrics records per-integration action outcomes.
type DispatchMetrics interface {
	OperationMetrics
	RecordActionOutcome(ctx context.Context, integration, component string, success bool)
}

// NewNoop returns metrics that record nothing.
func NewNoop() DispatchMetrics {
	return noop{}
}

type noop struct{}

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordActionOutcome(context.Context, string, string, bool)              {}

// Prometheus implements DispatchMetrics on a prometheus registry.
type Prometheus struct {
	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	actions  *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg under namespace.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_results_total",
			Help:      "Service operations finished, by result.",
		}, []string{"service", "operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_outcomes_total",
			Help:      "Action module executions, by integration and result.",
		}, []string{"integration", "component", "result"}),
	}

	for _, c := range []prometheus.Collector{p.attempts, p.outcomes, p.duration, p.actions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	p.attempts.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	p.outcomes.WithLabelValues(service, operation, "success").Inc()
}

func (p *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	p.outcomes.WithLabelValues(service, operation, "failure").Inc()
}

func (p *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	p.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (p *Prometheus) RecordActionOutcome(_ context.Context, integration, component string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.actions.WithLabelValues(integration, component, result).Inc()
}
