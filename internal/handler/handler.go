// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campusconnect/event-portal/internal/model"
	"github.com/campusconnect/event-portal/internal/service"
)

// RegistrationHandler holds the HTTP handlers for the registration and
// attendance API.
type RegistrationHandler struct {
	admission  *service.AdmissionService
	attendance *service.AttendanceService

	// conflictRetries bounds automatic retries on transient storage
	// contention. Policy rejections are never retried.
	conflictRetries int
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(admission *service.AdmissionService, attendance *service.AttendanceService, conflictRetries int) *RegistrationHandler {
	return &RegistrationHandler{
		admission:       admission,
		attendance:      attendance,
		conflictRetries: conflictRetries,
	}
}

// Routes mounts the API onto a chi router. Everything except the event
// catalog reads and the health check requires a bearer token.
func (h *RegistrationHandler) Routes(r chi.Router, secret []byte) {
	r.Get("/health", HealthCheck)
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(secret))
		r.Post("/events/{id}/register", h.Register)
		r.Get("/events/{id}/registrations", h.ListForEvent)
		r.Get("/me/registrations", h.ListOwnRegistrations)
		r.Get("/accounts/{id}/registrations", h.ListForAccount)
		r.Put("/registrations/{id}/attendance", h.MarkAttended)
		r.Put("/registrations/{id}/cancel", h.Cancel)
	})
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEvents handles GET /events
func (h *RegistrationHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.admission.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *RegistrationHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.admission.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Register handles POST /events/{id}/register
// The authenticated student registers themselves for the event.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	eventID := chi.URLParam(r, "id")

	var reg *model.Registration
	var err error
	for attempt := 0; ; attempt++ {
		reg, err = h.admission.Register(r.Context(), caller, eventID, time.Now())
		if !errors.Is(err, model.ErrTransientConflict) || attempt >= h.conflictRetries {
			break
		}
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ListForEvent handles GET /events/{id}/registrations
func (h *RegistrationHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	roster, err := h.attendance.ListForEvent(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if roster == nil {
		roster = []model.RosterEntry{}
	}
	writeJSON(w, http.StatusOK, roster)
}

// ListOwnRegistrations handles GET /me/registrations
func (h *RegistrationHandler) ListOwnRegistrations(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	regs, err := h.attendance.ListForAccount(r.Context(), caller, caller.AccountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ListForAccount handles GET /accounts/{id}/registrations
// Students may only read their own account; admins may read any.
func (h *RegistrationHandler) ListForAccount(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	regs, err := h.attendance.ListForAccount(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// MarkAttended handles PUT /registrations/{id}/attendance
func (h *RegistrationHandler) MarkAttended(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	reg, err := h.attendance.MarkAttended(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Cancel handles PUT /registrations/{id}/cancel
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	reg, err := h.attendance.Cancel(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps every rejection kind to a distinct HTTP outcome so
// the client can render an accurate message; nothing collapses into a
// generic failure.
func writeDomainError(w http.ResponseWriter, err error) {
	var invalid *model.InvalidTransitionError
	switch {
	case errors.Is(err, model.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, model.ErrRegistrationNotFound):
		writeError(w, http.StatusNotFound, "registration not found")
	case errors.Is(err, model.ErrDeadlinePassed):
		writeError(w, http.StatusUnprocessableEntity, "registration deadline has passed")
	case errors.Is(err, model.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "you are already registered for this event")
	case errors.Is(err, model.ErrEventFull):
		writeError(w, http.StatusConflict, "event is full")
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:         invalid.Error(),
			CurrentStatus: invalid.Current,
		})
	case errors.Is(err, model.ErrTransientConflict):
		writeError(w, http.StatusServiceUnavailable, "temporary contention, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
