// internal/httpserver/routes_games.go
//
// HTTP routes for games:
//   - GET    /games            → list all games
//   - POST   /games            → start a game with a word from the word source
//   - GET    /games/{id}       → fetch one game
//   - DELETE /games/{id}       → delete a game (idempotent)
//   - POST   /games/{id}/guess → guess a letter; body {"letter":"a"}
//   - GET    /games/{id}/watch → websocket feed of the game's snapshots

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/hangman/internal/game"
)

// maxBodyBytes bounds request bodies; a guess is a single letter.
const maxBodyBytes = 1 << 10

// mountGames registers the REST routes under /games.
func (s *Server) mountGames(r chi.Router) {
	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)
	r.Get("/{id}", s.handleGet)
	r.Delete("/{id}", s.handleDelete)
	r.Post("/{id}/guess", s.handleGuess)
}

func views(games []game.Game) []game.View {
	out := make([]game.View, 0, len(games))
	for _, g := range games {
		out = append(out, g.View())
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.List(r.Context())
	if err != nil {
		handleError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, views(games))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Create(r.Context())
	if err != nil {
		handleError(w, r, "", err)
		return
	}
	w.Header().Set("Location", "/games/"+g.ID)
	writeJSON(w, http.StatusCreated, g.View())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := s.games.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.games.Delete(r.Context(), id); err != nil {
		handleError(w, r, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// guessReq is the payload for POST /games/{id}/guess.
type guessReq struct {
	Letter string `json:"letter"`
}

// handleGuess applies one letter and returns the game, changed or not.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req guessReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be JSON like {\"letter\":\"a\"}.")
		return
	}
	g, err := s.games.Guess(r.Context(), id, req.Letter)
	if err != nil {
		handleError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// handleWatch upgrades to a websocket streaming the game's snapshots.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := s.games.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, id, err)
		return
	}
	// Upgrade failures have already been answered by the upgrader.
	if err := s.hub.Subscribe(w, r, g); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Str("gameId", id).Msg("watch upgrade")
	}
}
