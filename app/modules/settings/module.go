package settings

import (
	"context"
	"fmt"

	settingsservice "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/application"
	settingshandlers "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/infrastructure/handlers"
	settingsdb "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the settings module.
type Module struct {
	SettingsService settingsservice.Service
	observability   observability.Observability
}

// NewSettingsModule loads configuration and integration settings and
// registers their routes on httpRouter when one is given.
func NewSettingsModule(
	ctx context.Context,
	obs observability.Observability,
	state bundb.StateRepository,
	db *bun.DB,
	httpRouter chi.Router,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "settings.NewSettingsModule initializing")

	repo := settingsdb.NewRepository(state)
	service := settingsservice.NewSettingsService(repo, obs.Logger, obs.Metrics, obs.Tracer, db)
	if err := service.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if httpRouter != nil {
		settingshandlers.NewSettingsHandlers(service, obs.Logger).Routes(httpRouter)
	}

	return &Module{
		SettingsService: service,
		observability:   obs,
	}, nil
}
