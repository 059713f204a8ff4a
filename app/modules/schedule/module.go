package schedule

import (
	"context"
	"fmt"

	scheduleservice "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/application"
	schedulehandlers "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/infrastructure/handlers"
	scheduledb "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the schedule module.
type Module struct {
	ScheduleService scheduleservice.Service
	handlers        *schedulehandlers.ScheduleHandlers
	observability   observability.Observability
}

// NewScheduleModule creates the schedule service, loads the persisted
// schedule and registers its routes on httpRouter when one is given.
func NewScheduleModule(
	ctx context.Context,
	obs observability.Observability,
	state bundb.StateRepository,
	db *bun.DB,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "schedule.NewScheduleModule initializing")

	repo := scheduledb.NewRepository(state)
	service := scheduleservice.NewScheduleService(repo, logger, obs.Metrics, obs.Tracer, db)
	if err := service.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	handlers := schedulehandlers.NewScheduleHandlers(service, logger, obs.Tracer)
	if httpRouter != nil {
		handlers.Routes(httpRouter)
	}

	return &Module{
		ScheduleService: service,
		handlers:        handlers,
		observability:   obs,
	}, nil
}

// Close shuts down the schedule module. State is persisted on every
// mutation, so there is nothing to flush.
func (m *Module) Close() error {
	m.observability.Logger.Info("Schedule module stopped")
	return nil
}
