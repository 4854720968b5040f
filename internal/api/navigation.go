package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/seasonal/internal/syncer"
)

type NavigationHandler struct {
	nav *syncer.NavigationSession
}

func NewNavigationHandler(nav *syncer.NavigationSession) *NavigationHandler {
	return &NavigationHandler{nav: nav}
}

func (h *NavigationHandler) Routes(r chi.Router) {
	r.Get("/navigation", h.get)
	r.Put("/navigation", h.put)
}

type navigationResponse struct {
	CurrentDay  int `json:"currentDay"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

type navigationRequest struct {
	CurrentDay  int `json:"currentDay"`
	CurrentPage int `json:"currentPage"`
}

func (h *NavigationHandler) current() navigationResponse {
	p := h.nav.Prefs()
	return navigationResponse{CurrentDay: p.CurrentDay, CurrentPage: p.CurrentPage, TotalPages: h.nav.TotalPages()}
}

func (h *NavigationHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

// put moves the position. A day without a page jumps to page 1; a page
// without a day keeps the day. The save is debounced.
func (h *NavigationHandler) put(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CurrentDay == 0 && req.CurrentPage == 0 {
		writeError(w, http.StatusBadRequest, "currentDay or currentPage is required")
		return
	}
	if req.CurrentDay != 0 {
		if err := h.nav.GoToDay(req.CurrentDay); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.CurrentPage != 0 {
		if err := h.nav.SetPage(req.CurrentPage); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.current())
}
