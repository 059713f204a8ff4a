package action

import (
	"context"
	"fmt"

	actionservice "github.com/Black-And-White-Club/marathon-manager/app/modules/action/application"
	actionhandlers "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/handlers"
	actiondb "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the action module.
type Module struct {
	ActionService actionservice.Service
	observability observability.Observability
}

// NewActionModule loads the action buttons and export files, builds the
// dispatcher over integrations and registers the routes on httpRouter when
// one is given.
func NewActionModule(
	ctx context.Context,
	obs observability.Observability,
	state bundb.StateRepository,
	db *bun.DB,
	runs actionservice.RunSource,
	integrations actionservice.Integrations,
	notifier actionservice.Notifier,
	httpRouter chi.Router,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "action.NewActionModule initializing")

	repo := actiondb.NewRepository(state)
	service := actionservice.NewActionService(repo, runs, integrations, notifier, obs.Logger, obs.Metrics, obs.Tracer, db)
	if err := service.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load action buttons: %w", err)
	}

	if httpRouter != nil {
		actionhandlers.NewActionHandlers(service, obs.Logger).Routes(httpRouter)
	}

	return &Module{
		ActionService: service,
		observability: obs,
	}, nil
}

// Close shuts down the action module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Action module stopped")
	return nil
}
