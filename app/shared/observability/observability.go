// Package observability bundles the logger, metrics and tracer handed to
// every module.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "marathon-manager"

// Config selects the log handler and level.
type Config struct {
	LogFormat string // "json" or "text"
	LogLevel  string // debug, info, warn, error
}

type Observability struct {
	Logger   *slog.Logger
	Metrics  metrics.DispatchMetrics
	Tracer   trace.Tracer
	Registry *prometheus.Registry
}

// New builds the process observability stack writing logs to stderr.
func New(cfg Config) (Observability, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit log destination.
func NewWithWriter(cfg Config, w io.Writer) (Observability, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler).With(slog.String("service", serviceName))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewPrometheus(reg, "marathon")
	if err != nil {
		return Observability{}, err
	}

	return Observability{
		Logger:   logger,
		Metrics:  m,
		Tracer:   otel.Tracer(serviceName),
		Registry: reg,
	}, nil
}

// NewNoop is used by tests and one-shot CLI commands.
func NewNoop() Observability {
	return Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  metrics.NewNoop(),
		Tracer:   otel.Tracer(serviceName),
		Registry: prometheus.NewRegistry(),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
