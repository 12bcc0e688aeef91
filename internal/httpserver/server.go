// internal/httpserver/server.go
//
// HTTP server wiring for the Hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - User endpoint: POST /users.
//   - Game endpoints: create, fetch, move, cancel, history.
//   - Score/ranking/statistic endpoints: mounted in routes_scores.go.
//
// Handlers translate store sentinel errors to HTTP statuses; the game
// rules themselves live in the game package and the atomicity rules in
// the store package.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// Defaults applied when a new-game request leaves fields unset.
const (
	defaultMinLen   = 1
	defaultMaxLen   = 10
	defaultAttempts = 10
)

// Server bundles router, persistent store, and the statistic cache.
type Server struct {
	r     *chi.Mux
	store *store.Store
	stats *stats.Cache
}

// New constructs a Server, installs middleware, and registers routes.
func New(st *store.Store, sc *stats.Cache) *Server {
	s := &Server{r: chi.NewRouter(), store: st, stats: sc}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hangman-go","endpoints":["/health","POST /users","POST /games","PUT /games/{key}/move","/scores","/rankings"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Users
	s.r.Post("/users", s.handleCreateUser)

	// Games
	s.r.Route("/games", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Get("/{key}", s.handleGetGame)
		r.Put("/{key}/move", s.handleMove)
		r.Delete("/{key}", s.handleCancelGame)
		r.Get("/{key}/history", s.handleHistory)
	})

	// Scores, rankings, cached statistic
	s.mountScores()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ USERS --------------------------------------

type createUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// handleCreateUser registers a new user with a unique name.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}
	if err := s.store.CreateUser(r.Context(), req.Name, req.Email); err != nil {
		if errors.Is(err, store.ErrConflict) {
			http.Error(w, `{"error":"A User with that name already exists!"}`, http.StatusConflict)
			return
		}
		log.Error().Err(err).Msg("create user")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeMessage(w, "User "+req.Name+" created!")
}

// ------------------------------ GAMES --------------------------------------

type newGameReq struct {
	UserName string `json:"userName"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Attempts int    `json:"attempts"`
	Target   string `json:"target"` // optional fixed target (testing)
}

// gameView is the read-only projection of a game. It never carries the
// target or the discovered positions; the answer only ever appears in
// terminal messages.
type gameView struct {
	Key               string `json:"key"`
	UserName          string `json:"userName"`
	AttemptsRemaining int    `json:"attemptsRemaining"`
	GameOver          bool   `json:"gameOver"`
	Message           string `json:"message"`
}

func renderGame(g *game.Game, message string) gameView {
	return gameView{
		Key:               g.ID,
		UserName:          g.UserName,
		AttemptsRemaining: g.AttemptsRemaining,
		GameOver:          g.Over,
		Message:           message,
	}
}

// handleNewGame creates a game for an existing user against a random
// target word, then pokes the statistic refresher out-of-band.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	req := newGameReq{Min: defaultMinLen, Max: defaultMaxLen, Attempts: defaultAttempts}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Attempts <= 0 {
		http.Error(w, `{"error":"attempts must be positive"}`, http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUser(r.Context(), req.UserName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"A User with that name does not exist!"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("load user")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}

	target := req.Target
	if target == "" {
		target, err = words.Pick(req.Min, req.Max)
		if err != nil {
			if errors.Is(err, words.ErrInvalidRange) {
				http.Error(w, `{"error":"Maximum must be greater than minimum!"}`, http.StatusBadRequest)
				return
			}
			if errors.Is(err, words.ErrNoWord) {
				http.Error(w, `{"error":"No word available in that length range!"}`, http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Msg("pick word")
			http.Error(w, `{"error":"word_source_failed"}`, http.StatusInternalServerError)
			return
		}
	}

	g := game.New(user.Name, target, req.Attempts)
	if err := s.store.CreateGame(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	// Recomputing the average-attempts statistic is not needed to finish
	// creating the game, so it happens out of band.
	s.stats.Poke()

	_ = json.NewEncoder(w).Encode(renderGame(g, "Good luck playing Hangman!"))
}

// handleGetGame returns the current game state.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	msg := "Time to make a move!"
	if g.Over {
		msg = "Game has ended!"
	}
	_ = json.NewEncoder(w).Encode(renderGame(g, msg))
}

type moveReq struct {
	Guess string `json:"guess"`
}

// handleMove applies a guess through the store's transactional path.
// A move on a finished game is a soft no-op with an explanatory message.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, msg, err := s.store.SubmitGuess(r.Context(), chi.URLParam(r, "key"), req.Guess)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Game not found!"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("submit guess")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(renderGame(g, msg))
}

// handleCancelGame deletes an active game. Finished games are immutable.
func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.store.DeleteGame(r.Context(), key); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, `{"error":"Game not found!"}`, http.StatusNotFound)
		case errors.Is(err, store.ErrGameOver):
			http.Error(w, `{"error":"Game is already over!"}`, http.StatusConflict)
		default:
			log.Error().Err(err).Msg("cancel game")
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeMessage(w, "Game "+key+" cancelled!")
}

// handleHistory returns the ordered guess log for a game.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"key":     g.ID,
		"history": g.History,
	})
}

// loadGame fetches the game named by the {key} URL param, writing the
// error response itself when the lookup fails.
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, err := s.store.GetGame(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Game not found!"}`, http.StatusNotFound)
			return nil, false
		}
		log.Error().Err(err).Msg("load game")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return nil, false
	}
	return g, true
}

// ------------------------------- util --------------------------------------

func writeMessage(w http.ResponseWriter, msg string) {
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
