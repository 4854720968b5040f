package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/seasonal/internal/countdown"
)

type CountdownHandler struct {
	tracker *countdown.Tracker
}

func NewCountdownHandler(tracker *countdown.Tracker) *CountdownHandler {
	return &CountdownHandler{tracker: tracker}
}

func (h *CountdownHandler) Routes(r chi.Router) {
	r.Get("/countdowns", h.list)
	r.Get("/countdowns/{key}", h.get)
	r.Post("/countdowns/{key}/restart", h.restart)
}

func (h *CountdownHandler) list(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.tracker.All(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *CountdownHandler) get(w http.ResponseWriter, r *http.Request) {
	status, err := h.tracker.Status(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *CountdownHandler) restart(w http.ResponseWriter, r *http.Request) {
	status, err := h.tracker.Restart(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
