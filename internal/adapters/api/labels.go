package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/poyrazK/domainfolio/internal/core/domain"
)

func (h *APIHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.query.Labels(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, labels)
}

func (h *APIHandler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	var in domain.Label
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	label, err := h.gateway.CreateLabel(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, label)
}

func (h *APIHandler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	var in domain.Label
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	label, err := h.gateway.UpdateLabel(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, label)
}

func (h *APIHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.DeleteLabel(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
