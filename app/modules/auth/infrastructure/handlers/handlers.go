package authhandlers

import (
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/marathon-manager/app/shared/httpx"
	"github.com/go-chi/chi/v5"
)

type AuthHandlers struct {
	logger *slog.Logger
}

func NewAuthHandlers(logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{logger: logger}
}

// Routes registers the auth endpoints on r.
func (h *AuthHandlers) Routes(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
}

type meResponse struct {
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject,omitempty"`
	Role          string `json:"role,omitempty"`
	CanWrite      bool   `json:"canWrite"`
}

// HandleMe describes the caller. Without authentication every caller is a
// local operator.
func (h *AuthHandlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, meResponse{CanWrite: true})
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		Authenticated: true,
		Subject:       claims.Subject,
		Role:          string(claims.Role),
		CanWrite:      claims.CanWrite(),
	})
}
