package broadcasthandlers

import (
	"errors"
	"log/slog"
	"net/http"

	broadcastservice "github.com/Black-And-White-Club/marathon-manager/app/modules/broadcast/application"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/httpx"
	"github.com/Black-And-White-Club/marathon-manager/pkg/obsws"
	"github.com/go-chi/chi/v5"
)

type BroadcastHandlers struct {
	service broadcastservice.Service
	logger  *slog.Logger
}

func NewBroadcastHandlers(service broadcastservice.Service, logger *slog.Logger) *BroadcastHandlers {
	return &BroadcastHandlers{service: service, logger: logger}
}

// Routes registers the broadcast endpoints on r.
func (h *BroadcastHandlers) Routes(r chi.Router) {
	r.Route("/broadcast", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Post("/connect", h.HandleConnect)
		r.Post("/disconnect", h.HandleDisconnect)
		r.Get("/scenes", h.HandleScenes)
	})
}

func (h *BroadcastHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Status())
}

// HandleConnect is the operator's retry affordance.
func (h *BroadcastHandlers) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reconnect(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "OBS connect request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.Error(err),
		)
		httpx.JSON(w, http.StatusBadGateway, struct {
			Error  string                  `json:"error"`
			Status broadcastservice.Status `json:"status"`
		}{Error: err.Error(), Status: h.service.Status()})
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Status())
}

func (h *BroadcastHandlers) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	h.service.Disconnect()
	httpx.JSON(w, http.StatusOK, h.service.Status())
}

func (h *BroadcastHandlers) HandleScenes(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Send(r.Context(), "GetSceneList", nil)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, broadcastservice.ErrNotReady) {
			status = http.StatusServiceUnavailable
		}
		var reqErr *obsws.RequestError
		if errors.As(err, &reqErr) {
			status = http.StatusUnprocessableEntity
		}
		httpx.Error(w, status, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}
