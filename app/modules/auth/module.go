package auth

import (
	"context"
	"net/http"

	authhandlers "github.com/Black-And-White-Club/marathon-manager/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Config holds the control API access settings.
type Config struct {
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// Module represents the auth module: operator tokens and the request
// middleware of the control API.
type Module struct {
	Tokens        jwt.Service
	limiter       *authhandlers.IPRateLimiter
	cfg           Config
	observability observability.Observability
}

// NewAuthModule creates the auth module. A nil tokens service leaves the
// control API open, which suits a local desktop install.
func NewAuthModule(ctx context.Context, obs observability.Observability, tokens jwt.Service, cfg Config) *Module {
	obs.Logger.InfoContext(ctx, "auth.NewAuthModule initializing")
	if tokens == nil {
		obs.Logger.WarnContext(ctx, "JWT secret not configured; control API is unauthenticated")
	}

	var limiter *authhandlers.IPRateLimiter
	if cfg.RateLimit > 0 {
		limiter = authhandlers.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	return &Module{
		Tokens:        tokens,
		limiter:       limiter,
		cfg:           cfg,
		observability: obs,
	}
}

// Middleware returns the chain every control API request passes through.
func (m *Module) Middleware() []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		authhandlers.CorrelationMiddleware,
		authhandlers.CORSMiddleware(m.cfg.AllowedOrigins),
	}
	if m.limiter != nil {
		chain = append(chain, authhandlers.RateLimitMiddleware(m.limiter))
	}
	return append(chain, authhandlers.AuthMiddleware(m.Tokens, m.observability.Logger))
}

// Routes registers the auth endpoints on r. r must already carry Middleware.
func (m *Module) Routes(r chi.Router) {
	authhandlers.NewAuthHandlers(m.observability.Logger).Routes(r)
}
