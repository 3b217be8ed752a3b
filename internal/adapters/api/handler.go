package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// SearchRecorder takes search text for the history.
type SearchRecorder interface {
	Record(text string)
}

// APIHandler serves the dashboard REST API.
type APIHandler struct {
	query    ports.DomainQuery
	gateway  ports.DomainGateway
	searches SearchRecorder
	logger   *slog.Logger
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(query ports.DomainQuery, gateway ports.DomainGateway, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{query: query, gateway: gateway, logger: logger}
}

// WithSearchRecorder routes search text through r instead of writing it to
// the history on every request.
func (h *APIHandler) WithSearchRecorder(r SearchRecorder) *APIHandler {
	h.searches = r
	return h
}

func (h *APIHandler) recordSearch(ctx context.Context, text string) {
	if h.searches != nil {
		h.searches.Record(text)
		return
	}
	if err := h.gateway.RecordSearch(ctx, text); err != nil {
		h.logger.Warn("failed to record search", "error", err)
	}
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)
	checks := h.query.HealthCheck(r.Context())

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	code := http.StatusOK
	if status == "DEGRADED" {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, map[string]any{
		"status":  status,
		"details": details,
	})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP status codes.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate):
		status = http.StatusConflict
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	body := map[string]string{"error": err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	h.writeJSON(w, status, body)
}

// decode reads a JSON body into v. Failures are reported as validation
// errors.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// listParam collects a query parameter given repeatedly or comma-separated.
func listParam(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// idsRequest carries a selection. When Filter is set the ids are narrowed
// to the ones still in that filtered view.
type idsRequest struct {
	IDs    []string          `json:"ids"`
	Filter *domain.Predicate `json:"filter,omitempty"`
}

func (h *APIHandler) selection(ctx context.Context, req idsRequest) ([]string, error) {
	if req.Filter == nil {
		return req.IDs, nil
	}
	return h.query.SelectIDs(ctx, *req.Filter, req.IDs)
}
