package broadcast

import (
	"context"
	"sync"

	broadcastservice "github.com/Black-And-White-Club/marathon-manager/app/modules/broadcast/application"
	broadcasthandlers "github.com/Black-And-White-Club/marathon-manager/app/modules/broadcast/infrastructure/handlers"
	settingsservice "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/application"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/go-chi/chi/v5"
)

// Module represents the broadcast module.
type Module struct {
	Manager       *broadcastservice.Manager
	stopCtx       context.Context
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewBroadcastModule creates the OBS connection manager and reconnects it
// whenever the OBS settings change.
func NewBroadcastModule(
	ctx context.Context,
	obs observability.Observability,
	settings settingsservice.Service,
	httpRouter chi.Router,
) *Module {
	obs.Logger.InfoContext(ctx, "broadcast.NewBroadcastModule initializing")

	manager := broadcastservice.NewManager(settings, nil, obs.Logger, obs.Metrics, obs.Tracer)
	settings.OnOBSChange(manager.OnSettingsChanged)

	if httpRouter != nil {
		broadcasthandlers.NewBroadcastHandlers(manager, obs.Logger).Routes(httpRouter)
	}

	return newModule(manager, obs)
}

func newModule(manager *broadcastservice.Manager, obs observability.Observability) *Module {
	stopCtx, cancel := context.WithCancel(context.Background())
	return &Module{
		Manager:       manager,
		stopCtx:       stopCtx,
		cancelFunc:    cancel,
		observability: obs,
	}
}

// Run makes the first connection attempt. A failure is logged; operators
// retry through the connect endpoint.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting broadcast module")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(m.stopCtx, cancel)
	defer stop()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Manager.Connect(ctx); err != nil {
		logger.WarnContext(ctx, "Initial OBS connection failed", attr.Error(err))
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Broadcast module goroutine stopped")
}

// Close disconnects from OBS.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping broadcast module")
	m.cancelFunc()
	return m.Manager.Close()
}
