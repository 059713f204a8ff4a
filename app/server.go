package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// newRouter builds the root mux with the unauthenticated system routes and
// returns the authenticated group the modules register on.
func newRouter(app *App) (*chi.Mux, chi.Router) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry, promhttp.HandlerOpts{}))

	api := r.With(app.AuthModule.Middleware()...)
	api.Get("/notifications", app.handleNotifications)
	return r, api
}

// handleNotifications returns the toasts newer than ?since= (RFC 3339).
// Without since it returns everything kept.
func (app *App) handleNotifications(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}
	httpx.JSON(w, http.StatusOK, app.Feed.Since(since))
}

// Serve runs the control API until ctx is done, then shuts it down
// gracefully.
func (app *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.Config.HTTP.Address)
	if err != nil {
		return err
	}
	return app.serve(ctx, ln)
}

func (app *App) serve(ctx context.Context, ln net.Listener) error {
	logger := app.Observability.Logger
	srv := &http.Server{
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Control API listening", attr.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Control API shutdown failed", attr.Error(err))
		return err
	}
	logger.Info("Control API stopped")
	return nil
}
