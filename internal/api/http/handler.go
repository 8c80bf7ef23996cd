package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/joelcalolo/MoFleet-sub000/internal/api/payload"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

const maxBodyBytes = 1 << 20

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Handler serves the read-only HTTP surface: health, quotes and availability.
type Handler struct {
	reservationSvc service.ReservationService
	health         HealthCheck
}

func NewHandler(reservationSvc service.ReservationService, health HealthCheck) *Handler {
	return &Handler{reservationSvc: reservationSvc, health: health}
}

const apiPrefix = "/api/v1"

// RegisterRoutes mounts the handler on router. Routes sit on router itself so a
// method mismatch is answered with 405.
func RegisterRoutes(router *mux.Router, h *Handler) {
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/quotes", h.Quote).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/vehicles/{id}/availability", h.Availability).Methods(http.MethodGet)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, domain.NewValidationError("body", "unreadable request body"))
		return
	}

	var req payload.Quote
	if err := payload.Decode(body, &req); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := req.ToService()
	if err != nil {
		writeError(w, r, err)
		return
	}
	quote, err := h.reservationSvc.Quote(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload.NewQuoteView(quote))
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := payload.Availability{
		VehicleID: mux.Vars(r)["id"],
		Start:     query.Get("start"),
		End:       query.Get("end"),
		Exclude:   query.Get("exclude"),
	}
	if err := payload.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	candidate, err := req.ToCandidate()
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservationSvc.CheckAvailability(r.Context(), candidate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload.NewAvailabilityView(res))
}

type errorBody struct {
	Error       string              `json:"error"`
	Conflicting *domain.Reservation `json:"conflicting,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	body := errorBody{Error: err.Error()}
	if code == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Internal error", "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		body.Conflicting = ce.Conflicting
	}
	writeJSON(w, code, body)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}
