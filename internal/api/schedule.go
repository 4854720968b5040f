package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/syncer"
)

type ScheduleHandler struct {
	ws *syncer.Workspace
}

func NewScheduleHandler(ws *syncer.Workspace) *ScheduleHandler {
	return &ScheduleHandler{ws: ws}
}

func (h *ScheduleHandler) Routes(r chi.Router) {
	r.Get("/days/{day}", h.day)
	r.Post("/entries/{id}/toggle", h.toggle)
}

// DayResponse is one page of a day, or every matching channel when a
// filter or search is given.
type DayResponse struct {
	Day        int                  `json:"day"`
	Label      string               `json:"label"`
	Season     models.Season        `json:"season"`
	Page       int                  `json:"page,omitempty"`
	TotalPages int                  `json:"totalPages"`
	Pages      []int                `json:"pages,omitempty"` // -1 marks an ellipsis
	Channels   []syncer.ChannelCard `json:"channels"`
}

func (h *ScheduleHandler) day(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be a number")
		return
	}
	if err := schedule.ValidateDay(day); err != nil {
		writeDomainError(w, err)
		return
	}

	q := r.URL.Query()
	perPage := h.ws.Navigation.PerPage()
	resp := DayResponse{
		Day:        day,
		Label:      schedule.FormatDayDate(day),
		Season:     schedule.SeasonForDay(day),
		TotalPages: schedule.TotalPages(perPage),
	}

	filter := schedule.ChannelFilter(q.Get("filter"))
	search := q.Get("search")
	if filter != "" || search != "" {
		switch filter {
		case "", schedule.FilterAll, schedule.FilterWithSuffix, schedule.FilterNoSuffix:
		default:
			writeError(w, http.StatusBadRequest, "filter must be all, with-suffix or no-suffix")
			return
		}
		if filter == "" {
			filter = schedule.FilterAll
		}
		indexes := schedule.FilterChannels(schedule.ChannelIndexesForDay(day), h.ws.Settings.Suffixes(), filter, search)
		resp.Channels = h.ws.Cards(day, indexes)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "page must be a number")
			return
		}
	}
	cards, err := h.ws.Page(day, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp.Page = page
	resp.Pages = schedule.PageNumbers(page, resp.TotalPages)
	resp.Channels = cards
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScheduleHandler) toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, _, err := schedule.ParseEntryID(id); err != nil {
		writeDomainError(w, err)
		return
	}
	if _, ok := h.ws.Schedule.Entry(id); !ok {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	res, err := h.ws.Schedule.Toggle(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
