// internal/httpserver/routes_scores.go
//
// Read-only derived views:
//   - GET /scores                → every recorded score
//   - GET /scores/user/{name}    → one user's scores
//   - GET /scores/high?limit=N   → winning scores, best first
//   - GET /rankings              → users by win ratio, descending
//   - GET /stats/average-attempts → cached average attempts remaining

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/store"
)

// rankView is the leaderboard projection of a user.
type rankView struct {
	UserName string  `json:"userName"`
	Email    string  `json:"email,omitempty"`
	Win      int     `json:"win"`
	Loss     int     `json:"loss"`
	WinRatio float64 `json:"winRatio"`
}

// mountScores registers all score, ranking, and statistic routes.
func (s *Server) mountScores() {
	s.r.Route("/scores", func(r chi.Router) {
		r.Get("/", s.handleScores)
		r.Get("/high", s.handleHighScores)
		r.Get("/user/{name}", s.handleUserScores)
	})
	s.r.Get("/rankings", s.handleRankings)
	s.r.Get("/stats/average-attempts", s.handleAverageAttempts)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.store.ListScores(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list scores")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(scores)
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.store.ListUserScores(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"A User with that name does not exist!"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("list user scores")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(scores)
}

// handleHighScores lists winning scores ranked by (attempts_allowed ASC,
// guesses ASC): a win on a tighter budget with fewer misses ranks higher.
func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"limit must be a non-negative integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}
	scores, err := s.store.ListHighScores(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list high scores")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(scores)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Rankings(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list rankings")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]rankView, 0, len(users))
	for _, u := range users {
		out = append(out, rankView{
			UserName: u.Name,
			Email:    u.Email,
			Win:      u.Win,
			Loss:     u.Loss,
			WinRatio: u.WinRatio,
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleAverageAttempts serves the cached statistic; an empty message
// means it was never computed. Cache trouble degrades to the empty
// message rather than failing the request.
func (s *Server) handleAverageAttempts(w http.ResponseWriter, r *http.Request) {
	msg, err := s.stats.Get(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("read average attempts cache")
		msg = ""
	}
	writeMessage(w, msg)
}
