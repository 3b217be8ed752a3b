package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poyrazK/domainfolio/internal/core/domain"
)

func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	users, err := h.query.Users(r.Context(), includeDeleted)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.query.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) InviteUser(w http.ResponseWriter, r *http.Request) {
	var in domain.AppUser
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.gateway.InviteUser(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if err := decode(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.gateway.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// userAction adapts a status transition keyed by the id path parameter.
func (h *APIHandler) userAction(op func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
