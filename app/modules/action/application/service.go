package actionservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	actiondb "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ActionService implements the Service interface.
type ActionService struct {
	repo    actiondb.Repository
	runs    RunSource
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB

	engine   *textgen.Engine
	executor Executor
	newID    func() string

	mu    sync.RWMutex
	state actiondb.Snapshot

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// Option customises an ActionService.
type Option func(*ActionService)

// WithExecutor replaces the dispatcher built from the integrations.
func WithExecutor(e Executor) Option { return func(s *ActionService) { s.executor = e } }

func WithIDGenerator(fn func() string) Option { return func(s *ActionService) { s.newID = fn } }

func WithEngine(e *textgen.Engine) Option { return func(s *ActionService) { s.engine = e } }

// NewActionService creates the service and its dispatcher. The service is
// the dispatcher's source of export files.
func NewActionService(
	repo actiondb.Repository,
	runs RunSource,
	integrations Integrations,
	notifier Notifier,
	logger *slog.Logger,
	m metrics.DispatchMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *ActionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ActionService{
		repo:     repo,
		runs:     runs,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
		db:       db,
		newID:    uuid.NewString,
		inflight: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = textgen.New()
	}
	if s.executor == nil {
		if integrations.Exporter == nil {
			integrations.Exporter = NewExporter(s.engine)
		}
		s.executor = NewDispatcher(integrations, s, s.engine, notifier, logger, m, tracer)
	}
	return s
}

func (s *ActionService) Load(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "LoadActions", "", func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		snap, err := s.repo.Load(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to load action buttons: %w", err)
		}
		s.mu.Lock()
		s.state = snap
		s.mu.Unlock()
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

func cloneSnapshot(snap actiondb.Snapshot) actiondb.Snapshot {
	next := actiondb.Snapshot{
		Buttons:     make([]actiondomain.ActionButton, len(snap.Buttons)),
		Files:       append([]actiondomain.ExportFile(nil), snap.Files...),
		Activations: append([]actiondomain.ActivationRecord(nil), snap.Activations...),
	}
	for i, b := range snap.Buttons {
		next.Buttons[i] = b.Clone()
	}
	return next
}

func buttonIndex(snap *actiondb.Snapshot, id string) int {
	for i, b := range snap.Buttons {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// mutate edits a copy of the snapshot and swaps it in once persisted.
func mutate[S any](s *ActionService, ctx context.Context, fn func(next *actiondb.Snapshot) (results.OperationResult[S, error], bool)) (results.OperationResult[S, error], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.state)
	result, changed := fn(&next)
	if result.IsFailure() || !changed {
		return result, nil
	}

	_, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.Save(ctx, db, next); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return results.OperationResult[S, error]{}, err
	}

	s.state = next
	return result, nil
}

func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ActionService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, "ActionService")
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "ActionService", time.Since(startTime))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, "ActionService")
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, "ActionService")
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationSuccess(ctx, operationName, "ActionService")
		}
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ActionService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
