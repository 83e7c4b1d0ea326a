package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
)

// maxLimit caps the limit query parameter of list endpoints.
const maxLimit = 100

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/upcoming", s.handleUpcoming)
	mux.HandleFunc("GET /api/holidays", s.handleHolidays)
	mux.HandleFunc("GET /api/transitions", s.handleTransitions)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, NewStatusJSON(s.engine.Snapshot(s.now())))
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r, market.DefaultLookahead)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	now := s.now()
	resp := UpcomingJSON{
		Now:    now.UTC(),
		Events: NewEventsJSON(now, s.engine.Upcoming(now, limit)),
	}
	if s.engine.Calendar().State() != domain.CalendarReady {
		resp.Advisory = Advisory
	}
	writeJSON(w, resp)
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	cal := s.engine.Calendar()
	resp := HolidaysJSON{
		CalendarState: string(cal.State()),
		Holidays:      []HolidayJSON{},
	}
	for _, h := range cal.Holidays() {
		resp.Holidays = append(resp.Holidays, HolidayJSON{Date: h.Date.String(), Name: h.Name})
	}
	if err := cal.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, resp)
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "transition journal not configured")
		return
	}
	limit, ok := parseLimit(r, 20)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	trs, err := s.journal.ListTransitions(r.Context(), limit)
	if err != nil {
		s.log.Error("listing transitions", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := TransitionsJSON{Transitions: make([]TransitionJSON, len(trs))}
	for i, tr := range trs {
		resp.Transitions[i] = newTransitionJSON(tr)
	}
	writeJSON(w, resp)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotFound, "websocket updates not enabled")
		return
	}
	initial, err := json.Marshal(UpdateJSON{
		Type:   UpdateSnapshot,
		Status: NewStatusJSON(s.engine.Snapshot(s.now())),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.ServeWS(w, r, initial)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":        "ok",
		"calendarState": string(s.engine.Calendar().State()),
	})
}

// parseLimit reads the "limit" query parameter, falling back to def when it
// is absent. Values above maxLimit are clamped.
func parseLimit(r *http.Request, def int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
