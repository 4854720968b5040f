// Package api serves the calendar over HTTP for `seasonal serve`.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/seasonal/internal/countdown"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/syncer"
)

const defaultRequestTimeout = 30 * time.Second

type Server struct {
	ws      *syncer.Workspace
	tracker *countdown.Tracker
	events  *broker
	log     *log.Logger
}

// NewServer serves ws. tracker may be nil, in which case the countdown
// routes are not mounted.
func NewServer(ws *syncer.Workspace, tracker *countdown.Tracker) *Server {
	s := &Server{
		ws:      ws,
		tracker: tracker,
		events:  newBroker(),
		log:     logger.With("component", "api"),
	}
	ws.OnEvent(s.events.publish)
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE streams stay open, so they are mounted outside the timeout.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))

			r.Get("/health", s.handleHealth)
			r.Get("/stats", s.handleStats)

			NewScheduleHandler(s.ws).Routes(r)
			NewNavigationHandler(s.ws.Navigation).Routes(r)
			NewSettingsHandler(s.ws.Settings).Routes(r)
			if s.tracker != nil {
				NewCountdownHandler(s.tracker).Routes(r)
			}
		})
	})

	return r
}

// Close ends every open event stream.
func (s *Server) Close() {
	s.events.close()
}
