package schedulehandlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	scheduleservice "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/httpx"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// ScheduleHandlers serves the event, run and member endpoints.
type ScheduleHandlers struct {
	service scheduleservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScheduleHandlers creates a new ScheduleHandlers instance.
func NewScheduleHandlers(service scheduleservice.Service, logger *slog.Logger, tracer trace.Tracer) *ScheduleHandlers {
	return &ScheduleHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

var statusTable = map[error]int{
	scheduleservice.ErrEventNotFound:      http.StatusNotFound,
	scheduleservice.ErrRunNotFound:        http.StatusNotFound,
	scheduleservice.ErrMemberNotFound:     http.StatusNotFound,
	scheduleservice.ErrDuplicateRunID:     http.StatusConflict,
	scheduleservice.ErrEventNameRequired:  http.StatusBadRequest,
	scheduleservice.ErrInvalidStartTime:   http.StatusBadRequest,
	scheduleservice.ErrInvalidPosition:    http.StatusBadRequest,
	scheduleservice.ErrNoScheduleLink:     http.StatusUnprocessableEntity,
	scheduleservice.ErrNoRuns:             http.StatusUnprocessableEntity,
	scheduleservice.ErrUnsupportedImport:  http.StatusBadRequest,
	scheduleservice.ErrInvalidScheduleRow: http.StatusBadRequest,
	scheduledomain.ErrRunGameRequired:     http.StatusBadRequest,
	scheduledomain.ErrInvalidEstimate:     http.StatusBadRequest,
	scheduledomain.ErrMemberNameRequired:  http.StatusBadRequest,
	scheduledomain.ErrInvalidStreamAt:     http.StatusBadRequest,
	bundb.ErrPersistence:                  http.StatusInternalServerError,
}

// Routes registers the schedule endpoints on r.
func (h *ScheduleHandlers) Routes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.HandleListEvents)
		r.Post("/", h.HandleCreateEvent)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", h.HandleGetEvent)
			r.Put("/", h.HandleUpdateEvent)
			r.Delete("/", h.HandleDeleteEvent)
			r.Post("/import", h.HandleImportRuns)
			r.Get("/chart.png", h.HandleScheduleChart)
			r.Get("/qrcode.png", h.HandleScheduleQRCode)
			r.Post("/runs", h.HandleAddRun)
			r.Route("/runs/{runID}", func(r chi.Router) {
				r.Get("/", h.HandleGetRun)
				r.Put("/", h.HandleUpdateRun)
				r.Delete("/", h.HandleRemoveRun)
				r.Post("/move", h.HandleMoveRun)
			})
		})
	})
	r.Route("/members", func(r chi.Router) {
		r.Get("/", h.HandleListMembers)
		r.Post("/", h.HandleCreateMember)
		r.Get("/{memberID}", h.HandleGetMember)
		r.Put("/{memberID}", h.HandleUpdateMember)
		r.Delete("/{memberID}", h.HandleRemoveMember)
	})
}

func (h *ScheduleHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.Status(err, statusTable)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Schedule request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		httpx.Error(w, status, "internal error")
		return
	}
	httpx.Error(w, status, err.Error())
}

// --- Events ---

func (h *ScheduleHandlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}

func (h *ScheduleHandlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in scheduleservice.EventInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.service.CreateEvent(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func (h *ScheduleHandlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *ScheduleHandlers) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in scheduleservice.EventInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.service.UpdateEvent(r.Context(), chi.URLParam(r, "eventID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *ScheduleHandlers) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImportRuns accepts a multipart "file" field or a raw body with a
// ?filename= query parameter.
func (h *ScheduleHandlers) HandleImportRuns(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := h.service.ImportRuns(r.Context(), chi.URLParam(r, "eventID"), filename, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, runs)
}

func (h *ScheduleHandlers) HandleScheduleChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.ScheduleChart(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.PNG(w, png)
}

func (h *ScheduleHandlers) HandleScheduleQRCode(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := h.service.ScheduleQRCode(r.Context(), chi.URLParam(r, "eventID"), size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.PNG(w, png)
}

// --- Runs ---

func (h *ScheduleHandlers) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *ScheduleHandlers) HandleAddRun(w http.ResponseWriter, r *http.Request) {
	var run scheduledomain.Run
	if err := httpx.Decode(r, &run); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.service.AddRun(r.Context(), chi.URLParam(r, "eventID"), run)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *ScheduleHandlers) HandleUpdateRun(w http.ResponseWriter, r *http.Request) {
	var run scheduledomain.Run
	if err := httpx.Decode(r, &run); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	run.ID = chi.URLParam(r, "runID")
	updated, err := h.service.UpdateRun(r.Context(), chi.URLParam(r, "eventID"), run)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ScheduleHandlers) HandleRemoveRun(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveRun(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "runID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	Index int `json:"index"`
}

func (h *ScheduleHandlers) HandleMoveRun(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.MoveRun(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "runID"), req.Index); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Members ---

func (h *ScheduleHandlers) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *ScheduleHandlers) HandleCreateMember(w http.ResponseWriter, r *http.Request) {
	var m scheduledomain.Member
	if err := httpx.Decode(r, &m); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.service.CreateMember(r.Context(), m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *ScheduleHandlers) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetMember(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *ScheduleHandlers) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var m scheduledomain.Member
	if err := httpx.Decode(r, &m); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	m.ID = chi.URLParam(r, "memberID")
	updated, err := h.service.UpdateMember(r.Context(), m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ScheduleHandlers) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readUpload(r *http.Request) (string, []byte, error) {
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, httpx.MaxBodyBytes))
		return header.Filename, data, err
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		return "", nil, errMissingFilename
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, httpx.MaxBodyBytes))
	return filename, data, err
}
