package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/marathon-manager/app/eventbus"
	"github.com/Black-And-White-Club/marathon-manager/app/modules/action"
	actionservice "github.com/Black-And-White-Club/marathon-manager/app/modules/action/application"
	"github.com/Black-And-White-Club/marathon-manager/app/modules/auth"
	"github.com/Black-And-White-Club/marathon-manager/app/modules/broadcast"
	nightbotclient "github.com/Black-And-White-Club/marathon-manager/app/modules/nightbot/infrastructure/client"
	"github.com/Black-And-White-Club/marathon-manager/app/modules/schedule"
	"github.com/Black-And-White-Club/marathon-manager/app/modules/settings"
	settingsservice "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/application"
	twitchclient "github.com/Black-And-White-Club/marathon-manager/app/modules/twitch/infrastructure/client"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/config"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb/migrations"
	"github.com/Black-And-White-Club/marathon-manager/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// feedSize is how many notifications the polling endpoint keeps.
const feedSize = 200

// App wires the modules of the production manager together.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	Bus           *eventbus.Bus
	Feed          *eventbus.Feed
	// Handler serves the whole control API; Router is its authenticated part.
	Handler http.Handler
	Router  chi.Router

	AuthModule      *auth.Module
	SettingsModule  *settings.Module
	ScheduleModule  *schedule.Module
	BroadcastModule *broadcast.Module
	ActionModule    *action.Module

	ownsDB bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens the configured database, applies migrations and initializes
// every module.
func New(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	db, err := bundb.Open(ctx, cfg.Database.DSN, obs.Logger)
	if err != nil {
		return nil, err
	}
	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	app, err := NewWithDB(ctx, cfg, obs, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.ownsDB = true
	return app, nil
}

// NewWithDB initializes the modules on an already migrated database.
func NewWithDB(ctx context.Context, cfg *config.Config, obs observability.Observability, db *bun.DB) (*App, error) {
	logger := obs.Logger

	bus, err := eventbus.New(eventbus.Config{NATSURL: cfg.NATS.URL, NKeySeed: cfg.NATS.NKeySeed}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification bus: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		Bus:           bus,
		Feed:          eventbus.NewFeed(feedSize),
	}
	if err := app.initializeModules(ctx); err != nil {
		_ = bus.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) initializeModules(ctx context.Context) error {
	cfg, obs := app.Config, app.Observability

	var tokens jwt.Service
	if cfg.JWT.Secret != "" {
		tokens = jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL)
	}
	app.AuthModule = auth.NewAuthModule(ctx, obs, tokens, auth.Config{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
	})
	app.Handler, app.Router = newRouter(app)

	state := bundb.NewStateRepository(app.DB)

	var err error
	if app.SettingsModule, err = settings.NewSettingsModule(ctx, obs, state, app.DB, app.Router); err != nil {
		return fmt.Errorf("failed to initialize settings module: %w", err)
	}
	if app.ScheduleModule, err = schedule.NewScheduleModule(ctx, obs, state, app.DB, app.Router); err != nil {
		return fmt.Errorf("failed to initialize schedule module: %w", err)
	}

	settingsService := app.SettingsModule.SettingsService
	app.BroadcastModule = broadcast.NewBroadcastModule(ctx, obs, settingsService, app.Router)

	integrations := actionservice.Integrations{
		OBS:      app.BroadcastModule.Manager,
		Nightbot: nightbotclient.New(baseURL(cfg.Integrations.NightbotBaseURL, nightbotclient.DefaultBaseURL), settingsService.NightbotTokens(), obs.Logger),
		Twitch: twitchclient.New(
			baseURL(cfg.Integrations.TwitchBaseURL, twitchclient.DefaultBaseURL),
			settingsService.TwitchTokens(),
			twitchCredentials{settings: settingsService},
			obs.Logger,
		),
		Config: settingsService,
	}
	if app.ActionModule, err = action.NewActionModule(ctx, obs, state, app.DB, app.ScheduleModule.ScheduleService, integrations, app.Bus, app.Router); err != nil {
		return fmt.Errorf("failed to initialize action module: %w", err)
	}

	app.AuthModule.Routes(app.Router)
	return nil
}

// Run subscribes the notification consumers and starts the broadcast
// connection. It returns once everything is started; Close stops it.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	ctx, app.cancel = context.WithCancel(ctx)

	if err := app.Bus.Subscribe(ctx, eventbus.LogHandler(logger)); err != nil {
		return err
	}
	if err := app.Bus.Subscribe(ctx, app.Feed.Handle); err != nil {
		return err
	}

	if app.SettingsModule.SettingsService.OBS().Address != "" {
		app.wg.Add(1)
		go app.BroadcastModule.Run(ctx, &app.wg)
	} else {
		logger.InfoContext(ctx, "OBS address not configured; skipping initial connection")
	}
	return nil
}

// Close stops the modules in reverse start order.
func (app *App) Close() error {
	logger := app.Observability.Logger
	var errs []error

	if app.cancel != nil {
		app.cancel()
	}
	if app.ActionModule != nil {
		errs = append(errs, app.ActionModule.Close())
	}
	if app.BroadcastModule != nil {
		errs = append(errs, app.BroadcastModule.Close())
	}
	app.wg.Wait()

	if app.ScheduleModule != nil {
		errs = append(errs, app.ScheduleModule.Close())
	}
	if app.Bus != nil {
		errs = append(errs, app.Bus.Close())
	}
	if app.ownsDB && app.DB != nil {
		errs = append(errs, app.DB.Close())
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Errors while shutting down", attr.Error(err))
	}
	return err
}

func baseURL(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}

// twitchCredentials reads the client id and broadcaster from the current
// Twitch settings.
type twitchCredentials struct {
	settings settingsservice.Service
}

func (c twitchCredentials) ClientID() string      { return c.settings.Twitch().ClientID }
func (c twitchCredentials) BroadcasterID() string { return c.settings.Twitch().BroadcasterID }
