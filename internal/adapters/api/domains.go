package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poyrazK/domainfolio/internal/core/domain"
)

// predicateFromQuery builds a filter from query parameters.
func predicateFromQuery(r *http.Request) (domain.Predicate, error) {
	q := r.URL.Query()
	pred := domain.Predicate{
		Text:       q.Get("q"),
		Projects:   listParam(r, "project"),
		Registrars: listParam(r, "registrar"),
		LabelID:    q.Get("label"),
		FolderIDs:  listParam(r, "folder"),
	}
	for _, t := range listParam(r, "type") {
		pred.Types = append(pred.Types, domain.DomainType(t))
	}
	for _, s := range listParam(r, "status") {
		pred.Statuses = append(pred.Statuses, domain.Status(s))
	}

	var err error
	if v := q.Get("noFolder"); v != "" {
		if pred.NoFolder, err = strconv.ParseBool(v); err != nil {
			return pred, domain.NewValidationError("noFolder", "noFolder must be a boolean")
		}
	}
	if v := q.Get("hidden"); v != "" {
		if pred.ShowHidden, err = strconv.ParseBool(v); err != nil {
			return pred, domain.NewValidationError("hidden", "hidden must be a boolean")
		}
	}

	projects, departments := listParam(r, "scopeProject"), listParam(r, "scopeDepartment")
	if len(projects) > 0 || len(departments) > 0 {
		pred.Scope = &domain.UserScope{Projects: projects, Departments: departments}
	}
	return pred, nil
}

// ListDomains returns the filtered domain view. A search text is also
// recorded in the search history.
func (h *APIHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	pred, err := predicateFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	records, err := h.query.ListDomains(r.Context(), pred)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if pred.Text != "" {
		h.recordSearch(r.Context(), pred.Text)
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *APIHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	rec, err := h.query.GetDomain(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *APIHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var patch domain.DomainPatch
	if err := decode(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.gateway.CreateDomain(r.Context(), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *APIHandler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch domain.DomainPatch
	if err := decode(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.gateway.ApplyUpdate(r.Context(), id, patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.query.GetDomain(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *APIHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs   []string           `json:"ids"`
		Patch domain.DomainPatch `json:"patch"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.gateway.BulkUpdate(r.Context(), req.IDs, req.Patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommitBulkEdit saves names edited inline. Nothing is written when any
// name is invalid or the result would contain duplicates.
func (h *APIHandler) CommitBulkEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names map[string]string `json:"names"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.gateway.CommitBulkEdit(r.Context(), req.Names); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// idsAction adapts a gateway operation over a batch of ids.
func (h *APIHandler) idsAction(op func(context.Context, []string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req idsRequest
		if err := decode(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		ids, err := h.selection(r.Context(), req)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if err := op(r.Context(), ids); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *APIHandler) AssignLabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LabelID string `json:"labelId"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.gateway.AssignLabel(r.Context(), chi.URLParam(r, "id"), req.LabelID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) RecentDomains(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, domain.NewValidationError("limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.query.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *APIHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := h.query.Duplicates(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

// ExportCSV streams the filtered view, or the ids given in the ids parameter
// that are still in it, as a CSV attachment.
func (h *APIHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	pred, err := predicateFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	filename, err := h.query.ExportCSV(r.Context(), &buf, pred, listParam(r, "ids"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", "error", err)
	}
}

func (h *APIHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.query.SearchHistory(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}
