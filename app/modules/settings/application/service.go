package settingsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	settingsdb "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SettingsService implements the Service interface.
type SettingsService struct {
	repo    settingsdb.Repository
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB

	mu            sync.RWMutex
	configuration settingsdomain.Configuration
	obs           settingsdomain.OBSSettings
	nightbot      settingsdomain.NightbotSettings
	twitch        settingsdomain.TwitchSettings

	obsObservers []func(ctx context.Context, s settingsdomain.OBSSettings)
}

// NewSettingsService creates a new SettingsService holding the defaults
// until Load is called.
func NewSettingsService(
	repo settingsdb.Repository,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		repo:          repo,
		logger:        logger,
		metrics:       m,
		tracer:        tracer,
		db:            db,
		configuration: settingsdomain.DefaultConfiguration(),
		obs:           settingsdomain.DefaultOBSSettings(),
	}
}

// Load reads every settings record; records never written keep their defaults.
func (s *SettingsService) Load(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "LoadSettings", "", func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		cfg, found, err := s.repo.LoadConfiguration(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("configuration: %w", err)
		}
		if !found {
			cfg = settingsdomain.DefaultConfiguration()
		}
		obs, found, err := s.repo.LoadOBS(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("obs settings: %w", err)
		}
		if !found {
			obs = settingsdomain.DefaultOBSSettings()
		}
		nightbot, _, err := s.repo.LoadNightbot(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("nightbot settings: %w", err)
		}
		twitch, _, err := s.repo.LoadTwitch(ctx, nil)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("twitch settings: %w", err)
		}

		s.mu.Lock()
		s.configuration, s.obs, s.nightbot, s.twitch = cfg, obs, nightbot, twitch
		s.mu.Unlock()
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

func (s *SettingsService) Configuration() settingsdomain.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configuration
}

func (s *SettingsService) UpdateConfiguration(ctx context.Context, cfg settingsdomain.Configuration) (settingsdomain.Configuration, error) {
	return update(s, ctx, "UpdateConfiguration", &s.configuration, cfg, cfg.Validate, s.repo.SaveConfiguration)
}

func (s *SettingsService) OBS() settingsdomain.OBSSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obs
}

// UpdateOBS stores new connection settings and notifies OBS observers.
func (s *SettingsService) UpdateOBS(ctx context.Context, next settingsdomain.OBSSettings) (settingsdomain.OBSSettings, error) {
	saved, err := update(s, ctx, "UpdateOBS", &s.obs, next, next.Validate, s.repo.SaveOBS)
	if err != nil {
		return saved, err
	}
	s.mu.RLock()
	observers := append([]func(context.Context, settingsdomain.OBSSettings){}, s.obsObservers...)
	s.mu.RUnlock()
	for _, fn := range observers {
		fn(ctx, saved)
	}
	return saved, nil
}

// OnOBSChange registers fn to run after every successful UpdateOBS.
func (s *SettingsService) OnOBSChange(fn func(ctx context.Context, s settingsdomain.OBSSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obsObservers = append(s.obsObservers, fn)
}

func (s *SettingsService) Nightbot() settingsdomain.NightbotSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nightbot
}

// UpdateNightbot stores a token. Connected follows whether a token is set.
func (s *SettingsService) UpdateNightbot(ctx context.Context, next settingsdomain.NightbotSettings) (settingsdomain.NightbotSettings, error) {
	next.Connected = next.AccessToken != ""
	return update(s, ctx, "UpdateNightbot", &s.nightbot, next, nil, s.repo.SaveNightbot)
}

func (s *SettingsService) Twitch() settingsdomain.TwitchSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.twitch
}

// UpdateTwitch stores the channel credentials. Connected follows whether a
// token is set.
func (s *SettingsService) UpdateTwitch(ctx context.Context, next settingsdomain.TwitchSettings) (settingsdomain.TwitchSettings, error) {
	next.Connected = next.AccessToken != ""
	return update(s, ctx, "UpdateTwitch", &s.twitch, next, next.Validate, s.repo.SaveTwitch)
}

// update persists next and only then replaces *current.
func update[T any](
	s *SettingsService,
	ctx context.Context,
	operationName string,
	current *T,
	next T,
	validate func() error,
	save func(ctx context.Context, db bun.IDB, v T) error,
) (T, error) {
	result, err := withTelemetry(s, ctx, operationName, "", func(ctx context.Context) (results.OperationResult[T, error], error) {
		if validate != nil {
			if err := validate(); err != nil {
				return results.FailureResult[T, error](err), nil
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		_, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
			return results.OperationResult[struct{}, error]{}, save(ctx, db, next)
		})
		if err != nil {
			return results.OperationResult[T, error]{}, err
		}
		*current = next
		return results.SuccessResult[T, error](next), nil
	})
	var zero T
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *SettingsService,
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
		s.metrics.RecordOperationAttempt(ctx, operationName, "SettingsService")
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "SettingsService", time.Since(startTime))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, "SettingsService")
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
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, "SettingsService")
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationSuccess(ctx, operationName, "SettingsService")
		}
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *SettingsService,
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
