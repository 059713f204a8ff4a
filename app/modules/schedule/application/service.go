package scheduleservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/application/parsers"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Clock abstracts time for start-time parsing and timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// QRCodeEncoder matches qrcode.Encode.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// ScheduleService implements the Service interface. It keeps the whole
// schedule in memory; every mutation is persisted before it becomes visible.
type ScheduleService struct {
	repo    scheduledb.Repository
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB

	clock   Clock
	newID   func() string
	qr      QRCodeEncoder
	parsers parsers.ParserFactory

	mu    sync.RWMutex
	state *state
}

// Option customises a ScheduleService.
type Option func(*ScheduleService)

func WithClock(c Clock) Option { return func(s *ScheduleService) { s.clock = c } }

func WithIDGenerator(fn func() string) Option { return func(s *ScheduleService) { s.newID = fn } }

func WithQRCodeEncoder(enc QRCodeEncoder) Option { return func(s *ScheduleService) { s.qr = enc } }

// NewScheduleService creates a new ScheduleService with an empty schedule.
func NewScheduleService(
	repo scheduledb.Repository,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *ScheduleService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ScheduleService{
		repo:    repo,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		db:      db,
		clock:   systemClock{},
		newID:   uuid.NewString,
		qr:      qrcode.Encode,
		parsers: parsers.NewFactory(),
		state:   &state{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// state is the in-memory schedule. It is replaced wholesale on commit.
type state struct {
	events  []scheduledomain.Event
	members []scheduledomain.Member
}

func (st *state) clone() *state {
	next := &state{
		events:  make([]scheduledomain.Event, len(st.events)),
		members: make([]scheduledomain.Member, len(st.members)),
	}
	for i, e := range st.events {
		next.events[i] = e.Clone()
	}
	for i, m := range st.members {
		m.Images = append([]scheduledomain.Image(nil), m.Images...)
		next.members[i] = m
	}
	return next
}

func (st *state) eventIndex(id string) int {
	for i, e := range st.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (st *state) memberIndex(id string) int {
	for i, m := range st.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// dirty marks which stores a mutation touched.
type dirty uint8

const (
	dirtyEvents dirty = 1 << iota
	dirtyMembers
)

// Load replaces the in-memory schedule with the persisted one.
func (s *ScheduleService) Load(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "LoadSchedule", "", func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		events, err := s.repo.LoadEvents(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to load events: %w", err)
		}
		members, err := s.repo.LoadMembers(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to load members: %w", err)
		}
		s.mu.Lock()
		s.state = &state{events: events, members: members}
		s.mu.Unlock()
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

// mutation edits next in place and reports which stores it changed.
type mutation[S any] func(next *state) (results.OperationResult[S, error], dirty, error)

// mutate applies fn to a copy of the schedule, persists the touched stores in
// one transaction, and only then swaps the copy in. Cascades therefore become
// visible all at once or not at all.
func mutate[S any](s *ScheduleService, ctx context.Context, fn mutation[S]) (results.OperationResult[S, error], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	result, touched, err := fn(next)
	if err != nil || result.IsFailure() || touched == 0 {
		return result, err
	}

	_, err = runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if touched&dirtyEvents != 0 {
			if err := s.repo.SaveEvents(ctx, db, next.events); err != nil {
				return results.OperationResult[struct{}, error]{}, err
			}
		}
		if touched&dirtyMembers != 0 {
			if err := s.repo.SaveMembers(ctx, db, next.members); err != nil {
				return results.OperationResult[struct{}, error]{}, err
			}
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return results.OperationResult[S, error]{}, err
	}

	s.state = next
	return result, nil
}

// view runs fn against the current schedule under a read lock.
func view[S any](s *ScheduleService, fn func(st *state) results.OperationResult[S, error]) results.OperationResult[S, error] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// unwrap converts an operation result into the public (value, error) shape.
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

func unwrapErr(result results.OperationResult[struct{}, error], err error) error {
	_, err = unwrap(result, err)
	return err
}

func failure[S any](err error) (results.OperationResult[S, error], dirty, error) {
	return results.FailureResult[S, error](err), 0, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ScheduleService,
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
		s.metrics.RecordOperationAttempt(ctx, operationName, "ScheduleService")
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "ScheduleService", time.Since(startTime))
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
				s.metrics.RecordOperationFailure(ctx, operationName, "ScheduleService")
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
			s.metrics.RecordOperationFailure(ctx, operationName, "ScheduleService")
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
			s.metrics.RecordOperationSuccess(ctx, operationName, "ScheduleService")
		}
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ScheduleService,
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
