package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/poyrazK/domainfolio/internal/core/domain"
)

func (h *APIHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.query.Folders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, folders)
}

// GetFolder returns the folder together with its member domains.
func (h *APIHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, members, err := h.query.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"folder":  folder,
		"domains": members,
	})
}

func (h *APIHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var in domain.Folder
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	folder, err := h.gateway.CreateFolder(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, folder)
}

func (h *APIHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var patch domain.FolderPatch
	if err := decode(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	folder, err := h.gateway.UpdateFolder(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, folder)
}

func (h *APIHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.DeleteFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) AddDomainsToFolder(w http.ResponseWriter, r *http.Request) {
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
	added, err := h.gateway.AddDomainsToFolder(r.Context(), chi.URLParam(r, "id"), ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (h *APIHandler) RemoveDomainFromFolder(w http.ResponseWriter, r *http.Request) {
	err := h.gateway.RemoveDomainFromFolder(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "domainID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveDomains adds domains to the folder and reports how many were already
// there.
func (h *APIHandler) MoveDomains(w http.ResponseWriter, r *http.Request) {
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
	res, err := h.gateway.MoveDomains(r.Context(), ids, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
