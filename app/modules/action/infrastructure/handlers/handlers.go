package actionhandlers

import (
	"log/slog"
	"net/http"

	actionservice "github.com/Black-And-White-Club/marathon-manager/app/modules/action/application"
	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	scheduleservice "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/application"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/httpx"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/go-chi/chi/v5"
)

// ActionHandlers serves the action button, export file and trigger endpoints.
type ActionHandlers struct {
	service actionservice.Service
	logger  *slog.Logger
}

func NewActionHandlers(service actionservice.Service, logger *slog.Logger) *ActionHandlers {
	return &ActionHandlers{service: service, logger: logger}
}

var statusTable = map[error]int{
	actionservice.ErrButtonNotFound:        http.StatusNotFound,
	actionservice.ErrExportFileNotFound:    http.StatusNotFound,
	actionservice.ErrButtonHidden:          http.StatusUnprocessableEntity,
	actionservice.ErrConfirmationRequired:  http.StatusPreconditionRequired,
	actionservice.ErrActionInFlight:        http.StatusConflict,
	actiondomain.ErrButtonLabelRequired:    http.StatusBadRequest,
	actiondomain.ErrInvalidMinimum:         http.StatusBadRequest,
	actiondomain.ErrUnknownAction:          http.StatusBadRequest,
	actiondomain.ErrInvalidComponent:       http.StatusBadRequest,
	actiondomain.ErrPayloadMismatch:        http.StatusBadRequest,
	actiondomain.ErrUnknownRole:            http.StatusBadRequest,
	actiondomain.ErrExportFileNameRequired: http.StatusBadRequest,
	scheduleservice.ErrEventNotFound:       http.StatusNotFound,
	scheduleservice.ErrRunNotFound:         http.StatusNotFound,
	bundb.ErrPersistence:                   http.StatusInternalServerError,
}

// Routes registers the action endpoints on r.
func (h *ActionHandlers) Routes(r chi.Router) {
	r.Route("/actions", func(r chi.Router) {
		r.Get("/buttons", h.HandleListButtons)
		r.Post("/buttons", h.HandleCreateButton)
		r.Get("/buttons/{buttonID}", h.HandleGetButton)
		r.Put("/buttons/{buttonID}", h.HandleUpdateButton)
		r.Delete("/buttons/{buttonID}", h.HandleDeleteButton)
		r.Post("/buttons/{buttonID}/trigger", h.HandleTrigger)

		r.Get("/visible", h.HandleVisibleButtons)
		r.Get("/activations", h.HandleActivations)
		r.Post("/render", h.HandleRender)

		r.Get("/files", h.HandleListFiles)
		r.Put("/files", h.HandleSaveFile)
		r.Delete("/files/{name}", h.HandleDeleteFile)
	})
}

func (h *ActionHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.Status(err, statusTable)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Action request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		httpx.Error(w, status, "internal error")
		return
	}
	httpx.Error(w, status, err.Error())
}

func (h *ActionHandlers) HandleListButtons(w http.ResponseWriter, r *http.Request) {
	buttons, err := h.service.ListButtons(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buttons)
}

func (h *ActionHandlers) HandleGetButton(w http.ResponseWriter, r *http.Request) {
	button, err := h.service.GetButton(r.Context(), chi.URLParam(r, "buttonID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, button)
}

func (h *ActionHandlers) HandleCreateButton(w http.ResponseWriter, r *http.Request) {
	var in actiondomain.ActionButton
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}
	button, err := h.service.CreateButton(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, button)
}

func (h *ActionHandlers) HandleUpdateButton(w http.ResponseWriter, r *http.Request) {
	var in actiondomain.ActionButton
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}
	in.ID = chi.URLParam(r, "buttonID")
	button, err := h.service.UpdateButton(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, button)
}

func (h *ActionHandlers) HandleDeleteButton(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteButton(r.Context(), chi.URLParam(r, "buttonID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTrigger fires a button. Module failures are part of the 200 report.
func (h *ActionHandlers) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var req actionservice.TriggerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ButtonID = chi.URLParam(r, "buttonID")

	report, err := h.service.Trigger(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *ActionHandlers) HandleVisibleButtons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buttons, err := h.service.VisibleButtons(r.Context(), q.Get("eventId"), q.Get("runId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buttons)
}

func (h *ActionHandlers) HandleActivations(w http.ResponseWriter, r *http.Request) {
	activations, err := h.service.Activations(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, activations)
}

type renderRequest struct {
	EventID         string `json:"eventId"`
	RunID           string `json:"runId"`
	Template        string `json:"template"`
	MaxCharsPerLine int    `json:"maxCharsPerLine"`
}

func (h *ActionHandlers) HandleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	text, err := h.service.Render(r.Context(), req.EventID, req.RunID, req.Template, req.MaxCharsPerLine)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *ActionHandlers) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ExportFiles())
}

func (h *ActionHandlers) HandleSaveFile(w http.ResponseWriter, r *http.Request) {
	var in actiondomain.ExportFile
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	file, err := h.service.SaveExportFile(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, file)
}

func (h *ActionHandlers) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExportFile(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
