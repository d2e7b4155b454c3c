// internal/httpserver/server.go
//
// HTTP server wiring for the Hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: /games CRUD, POST /games/{id}/guess.
//   - Live feed: GET /games/{id}/watch (websocket, outside the request timeout).
//   - Mapping service errors to JSON error responses.
//
// Notes:
//   - CORS is origin-aware for a single configured client origin.
//   - The secret word is only serialized once a game is finished (game.View).

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/live"
	"github.com/robalobadob/hangman/internal/service"
	"github.com/robalobadob/hangman/internal/store"
)

// Options tunes transport behaviour.
type Options struct {
	ClientOrigin   string        // CORS origin; also the websocket origin check
	RequestTimeout time.Duration // bound for REST handlers; 0 disables
}

// Server bundles router, game service, and live hub.
type Server struct {
	r     *chi.Mux
	games *service.GameService
	hub   *live.Hub
}

// New constructs a Server, installs middleware, and registers routes.
func New(games *service.GameService, hub *live.Hub, opts Options) *Server {
	s := &Server{r: chi.NewRouter(), games: games, hub: hub}

	// --- middleware ---
	s.r.Use(chimw.RequestID)            // add X-Request-ID
	s.r.Use(chimw.RealIP)               // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger)) // request-scoped logger
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(cors(opts.ClientOrigin))

	// REST handlers are time-bounded and JSON; the websocket feed is neither.
	rest := chi.Chain(jsonContentType)
	if opts.RequestTimeout > 0 {
		rest = chi.Chain(chimw.Timeout(opts.RequestTimeout), jsonContentType)
	}

	// --- diagnostics ---
	s.r.With(rest...).Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "hangman-go",
			"endpoints": []string{
				"/health",
				"GET /games", "POST /games",
				"GET /games/{id}", "DELETE /games/{id}",
				"POST /games/{id}/guess", "GET /games/{id}/watch",
			},
		})
	})
	s.r.With(rest...).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/games", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rest...)
			s.mountGames(r)
		})
		r.Get("/{id}/watch", s.handleWatch)
	})

	// JSON 404/405 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "No route for "+r.URL.Path)
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})

	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one line per request through the request-scoped logger.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("requestId", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})

// ------------------------------ responses ----------------------------------

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg, StatusCode: status})
}

// handleError maps service and store errors onto HTTP responses.
// Anything unrecognised is logged and reported as a 500.
func handleError(w http.ResponseWriter, r *http.Request, id string, err error) {
	var verr *game.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("No game with ID %s exists.", id))
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Game was modified concurrently, retry the request.")
	case errors.Is(err, service.ErrWordUnavailable):
		hlog.FromRequest(r).Warn().Err(err).Msg("word source failed")
		writeError(w, http.StatusServiceUnavailable, "No word available, try again later.")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("gameId", id).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
