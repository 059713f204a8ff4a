package settingshandlers

import (
	"log/slog"
	"net/http"

	settingsservice "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/application"
	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/httpx"
	"github.com/go-chi/chi/v5"
)

// Redacted stands in for stored secrets in responses. Sending it back in an
// update keeps the stored value.
const Redacted = "********"

type SettingsHandlers struct {
	service settingsservice.Service
	logger  *slog.Logger
}

func NewSettingsHandlers(service settingsservice.Service, logger *slog.Logger) *SettingsHandlers {
	return &SettingsHandlers{service: service, logger: logger}
}

var statusTable = map[error]int{
	settingsdomain.ErrInvalidOBSVersion:   http.StatusBadRequest,
	settingsdomain.ErrBrowserURLTemplate:  http.StatusBadRequest,
	settingsdomain.ErrTwitchClientMissing: http.StatusBadRequest,
}

// Routes registers the settings endpoints on r.
func (h *SettingsHandlers) Routes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/configuration", h.HandleGetConfiguration)
		r.Put("/configuration", h.HandleUpdateConfiguration)
		r.Get("/obs", h.HandleGetOBS)
		r.Put("/obs", h.HandleUpdateOBS)
		r.Get("/nightbot", h.HandleGetNightbot)
		r.Put("/nightbot", h.HandleUpdateNightbot)
		r.Get("/twitch", h.HandleGetTwitch)
		r.Put("/twitch", h.HandleUpdateTwitch)
	})
}

func (h *SettingsHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.Status(err, statusTable)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Settings request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.Error(err),
		)
		httpx.Error(w, status, "internal error")
		return
	}
	httpx.Error(w, status, err.Error())
}

func (h *SettingsHandlers) HandleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Configuration())
}

func (h *SettingsHandlers) HandleUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg settingsdomain.Configuration
	if err := httpx.Decode(r, &cfg); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.service.UpdateConfiguration(r.Context(), cfg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *SettingsHandlers) HandleGetOBS(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, redactOBS(h.service.OBS()))
}

func (h *SettingsHandlers) HandleUpdateOBS(w http.ResponseWriter, r *http.Request) {
	var in settingsdomain.OBSSettings
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Password = keepSecret(in.Password, h.service.OBS().Password)
	saved, err := h.service.UpdateOBS(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, redactOBS(saved))
}

func (h *SettingsHandlers) HandleGetNightbot(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, redactNightbot(h.service.Nightbot()))
}

func (h *SettingsHandlers) HandleUpdateNightbot(w http.ResponseWriter, r *http.Request) {
	var in settingsdomain.NightbotSettings
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in.AccessToken = keepSecret(in.AccessToken, h.service.Nightbot().AccessToken)
	saved, err := h.service.UpdateNightbot(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, redactNightbot(saved))
}

func (h *SettingsHandlers) HandleGetTwitch(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, redactTwitch(h.service.Twitch()))
}

func (h *SettingsHandlers) HandleUpdateTwitch(w http.ResponseWriter, r *http.Request) {
	var in settingsdomain.TwitchSettings
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in.AccessToken = keepSecret(in.AccessToken, h.service.Twitch().AccessToken)
	saved, err := h.service.UpdateTwitch(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, redactTwitch(saved))
}

func keepSecret(incoming, stored string) string {
	if incoming == Redacted {
		return stored
	}
	return incoming
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return Redacted
}

func redactOBS(s settingsdomain.OBSSettings) settingsdomain.OBSSettings {
	s.Password = redact(s.Password)
	return s
}

func redactNightbot(s settingsdomain.NightbotSettings) settingsdomain.NightbotSettings {
	s.AccessToken = redact(s.AccessToken)
	return s
}

func redactTwitch(s settingsdomain.TwitchSettings) settingsdomain.TwitchSettings {
	s.AccessToken = redact(s.AccessToken)
	return s
}
