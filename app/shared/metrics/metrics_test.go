package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "marathon")
	require.NoError(t, err)

	ctx := context.Background()
	p.RecordOperationAttempt(ctx, "CreateEvent", "ScheduleService")
	p.RecordOperationSuccess(ctx, "CreateEvent", "ScheduleService")
	p.RecordOperationFailure(ctx, "CreateEvent", "ScheduleService")
	p.RecordOperationDuration(ctx, "CreateEvent", "ScheduleService", 20*time.Millisecond)
	p.RecordActionOutcome(ctx, "obs", "SET_BROWSER_SOURCE", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.attempts.WithLabelValues("ScheduleService", "CreateEvent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.outcomes.WithLabelValues("ScheduleService", "CreateEvent", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.outcomes.WithLabelValues("ScheduleService", "CreateEvent", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.actions.WithLabelValues("obs", "SET_BROWSER_SOURCE", "failure")))
}

func TestNewPrometheusRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg, "marathon")
	require.NoError(t, err)

	_, err = NewPrometheus(reg, "marathon")
	assert.Error(t, err)
}
