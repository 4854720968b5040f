package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/seasonal/internal/syncer"
)

type SettingsHandler struct {
	settings *syncer.SettingsSession
}

func NewSettingsHandler(settings *syncer.SettingsSession) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Routes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings/suffixes", h.putAll)
	r.Put("/settings/suffixes/{index}", h.putOne)
	r.Delete("/settings/suffixes/{index}", h.deleteOne)
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Settings())
}

// putAll replaces every suffix and saves at once.
func (h *SettingsHandler) putAll(w http.ResponseWriter, r *http.Request) {
	var suffixes map[int]string
	if err := json.NewDecoder(r.Body).Decode(&suffixes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: expected an object of channel index to suffix")
		return
	}
	if err := h.settings.BulkUpdateChannelSuffixes(r.Context(), suffixes); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.settings.Settings())
}

type suffixRequest struct {
	Suffix string `json:"suffix"`
}

func (h *SettingsHandler) putOne(w http.ResponseWriter, r *http.Request) {
	index, ok := channelIndex(w, r)
	if !ok {
		return
	}
	var req suffixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.update(w, index, req.Suffix)
}

func (h *SettingsHandler) deleteOne(w http.ResponseWriter, r *http.Request) {
	index, ok := channelIndex(w, r)
	if !ok {
		return
	}
	h.update(w, index, "")
}

func (h *SettingsHandler) update(w http.ResponseWriter, index int, suffix string) {
	if err := h.settings.UpdateChannelSuffix(index, suffix); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index": index,
		"name":  h.settings.ChannelName(index),
	})
}

func channelIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be a number")
		return 0, false
	}
	return index, true
}
