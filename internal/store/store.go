// internal/store/store.go
//
// SQLite persistence for users, games, and scores.
// Responsibilities:
//   - CRUD for the three collections (users keyed by name, games and
//     scores by opaque id).
//   - Applying a guess as one read-modify-write transaction so two
//     concurrent guesses against the same game cannot lose updates.
//   - Closing out a terminal game atomically: the game_over flip, the
//     score insert, and the user's win/loss/ratio update either all
//     commit or none do.
//
// Game engine state (discovered positions, history) is stored as JSON
// columns; the engine itself never touches the database.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/game"
)

var (
	// ErrNotFound means the referenced user or game key does not resolve.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict means a user with that name already exists.
	ErrConflict = errors.New("store: already exists")
	// ErrGameOver means a mutation was attempted on a terminated game.
	ErrGameOver = errors.New("store: game already over")
)

// User is one registered player with cumulative results.
type User struct {
	Name     string  `json:"name"`
	Email    string  `json:"email,omitempty"`
	Win      int     `json:"win"`
	Loss     int     `json:"loss"`
	WinRatio float64 `json:"winRatio,omitempty"` // undefined until win+loss > 0
	HasRatio bool    `json:"-"`
}

// Score is the append-only record of one finished game.
type Score struct {
	ID              string `json:"id"`
	UserName        string `json:"userName"`
	Won             bool   `json:"won"`
	Guesses         int    `json:"guesses"`
	Target          string `json:"target"`
	AttemptsAllowed int    `json:"attemptsAllowed"`
	Date            string `json:"date"` // YYYY-MM-DD
}

// Store wraps the database handle. All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// New constructs a Store over an opened database.
func New(db *sql.DB) *Store { return &Store{db: db} }

/* ------------------------------- users --------------------------------- */

// CreateUser registers a new user. Names are unique and case-sensitive.
func (s *Store) CreateUser(ctx context.Context, name, email string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE name=?`, name).Scan(&exists)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check user: %w", err)
	}
	var em any
	if email != "" {
		em = email
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?,?,?)`,
		name, em, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser loads one user by name.
func (s *Store) GetUser(ctx context.Context, name string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, COALESCE(email,''), win, loss, win_ratio FROM users WHERE name=?`, name)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var ratio sql.NullFloat64
	if err := row.Scan(&u.Name, &u.Email, &u.Win, &u.Loss, &ratio); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.WinRatio, u.HasRatio = ratio.Float64, ratio.Valid
	return &u, nil
}

// Rankings returns users ordered by win ratio descending. Users with no
// finished games have no ratio and are excluded.
func (s *Store) Rankings(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, COALESCE(email,''), win, loss, win_ratio
        FROM users
        WHERE win + loss > 0
        ORDER BY win_ratio DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		var ratio sql.NullFloat64
		if err := rows.Scan(&u.Name, &u.Email, &u.Win, &u.Loss, &ratio); err != nil {
			return nil, err
		}
		u.WinRatio, u.HasRatio = ratio.Float64, ratio.Valid
		out = append(out, u)
	}
	return out, rows.Err()
}

/* ------------------------------- games --------------------------------- */

// CreateGame persists a freshly created engine game.
func (s *Store) CreateGame(ctx context.Context, g *game.Game) error {
	correct, history, err := marshalState(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO games
            (id, user_name, target, attempts_allowed, attempts_remaining,
             correct, history, game_over, won, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?)`,
		g.ID, g.UserName, g.Target, g.AttemptsAllowed, g.AttemptsRemaining,
		correct, history, g.Over, g.Won, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// GetGame loads one game by id.
func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	return getGame(ctx, s.db, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getGame(ctx context.Context, q querier, id string) (*game.Game, error) {
	row := q.QueryRowContext(ctx, `
        SELECT id, user_name, target, attempts_allowed, attempts_remaining,
               correct, history, game_over, won
        FROM games WHERE id=?`, id)

	var g game.Game
	var correct, history string
	if err := row.Scan(&g.ID, &g.UserName, &g.Target, &g.AttemptsAllowed,
		&g.AttemptsRemaining, &correct, &history, &g.Over, &g.Won); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(correct), &g.Correct); err != nil {
		return nil, fmt.Errorf("decode correct: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &g.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return &g, nil
}

// SubmitGuess applies one guess inside a single transaction: load the
// game, run the engine, persist the updated state, and — when the game
// just ended — record the score and bump the user's totals in the same
// transaction. The write transaction serializes concurrent guesses
// against the same game.
//
// If the atomic close-out fails, the whole transaction rolls back and
// the game stays non-terminal.
func (s *Store) SubmitGuess(ctx context.Context, id, guess string) (*game.Game, string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = tx.Rollback() }()

	g, err := getGame(ctx, tx, id)
	if err != nil {
		return nil, "", err
	}

	wasOver := g.Over
	msg := g.ApplyGuess(guess)
	if wasOver {
		// Terminal no-op; nothing to write.
		return g, msg, nil
	}

	correct, history, err := marshalState(g)
	if err != nil {
		return nil, "", err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE games
        SET attempts_remaining=?, correct=?, history=?, game_over=?, won=?
        WHERE id=?`,
		g.AttemptsRemaining, correct, history, g.Over, g.Won, g.ID); err != nil {
		return nil, "", fmt.Errorf("update game: %w", err)
	}

	if g.Over {
		if err := finalize(ctx, tx, g); err != nil {
			return nil, "", fmt.Errorf("finalize game: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, "", err
	}
	return g, msg, nil
}

// finalize records the score and updates the owner's cumulative results.
// Runs within the caller's transaction.
func finalize(ctx context.Context, tx *sql.Tx, g *game.Game) error {
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO scores (id, user_name, won, guesses, target, attempts_allowed, created_at)
        VALUES (?,?,?,?,?,?,?)`,
		uuid.NewString(), g.UserName, g.Won, g.GuessesUsed(), g.Target,
		g.AttemptsAllowed, time.Now().UTC().Format("2006-01-02")); err != nil {
		return err
	}

	var win, loss int
	if err := tx.QueryRowContext(ctx,
		`SELECT win, loss FROM users WHERE name=?`, g.UserName).Scan(&win, &loss); err != nil {
		return err
	}
	if g.Won {
		win++
	} else {
		loss++
	}
	ratio := float64(win) / float64(win+loss)
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET win=?, loss=?, win_ratio=? WHERE name=?`,
		win, loss, ratio, g.UserName)
	return err
}

// DeleteGame cancels an active game. Terminated games cannot be deleted.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var over bool
	if err := tx.QueryRowContext(ctx,
		`SELECT game_over FROM games WHERE id=?`, id).Scan(&over); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if over {
		return ErrGameOver
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ActiveAttempts returns attempts_remaining for every non-terminal game.
// Feeds the average-attempts statistic.
func (s *Store) ActiveAttempts(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempts_remaining FROM games WHERE game_over=0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

/* ------------------------------- scores -------------------------------- */

// ListScores returns every recorded score, newest first.
func (s *Store) ListScores(ctx context.Context) ([]Score, error) {
	return s.queryScores(ctx, `
        SELECT id, user_name, won, guesses, target, attempts_allowed, created_at
        FROM scores ORDER BY created_at DESC, id`)
}

// ListUserScores returns one user's scores. The user must exist.
func (s *Store) ListUserScores(ctx context.Context, userName string) ([]Score, error) {
	if _, err := s.GetUser(ctx, userName); err != nil {
		return nil, err
	}
	return s.queryScores(ctx, `
        SELECT id, user_name, won, guesses, target, attempts_allowed, created_at
        FROM scores WHERE user_name=? ORDER BY created_at DESC, id`, userName)
}

// ListHighScores returns winning scores ranked best-first: fewer allowed
// attempts, then fewer guesses used. limit <= 0 means no limit.
func (s *Store) ListHighScores(ctx context.Context, limit int) ([]Score, error) {
	q := `
        SELECT id, user_name, won, guesses, target, attempts_allowed, created_at
        FROM scores WHERE won=1
        ORDER BY attempts_allowed ASC, guesses ASC, created_at ASC`
	if limit > 0 {
		return s.queryScores(ctx, q+` LIMIT ?`, limit)
	}
	return s.queryScores(ctx, q)
}

func (s *Store) queryScores(ctx context.Context, query string, args ...any) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Score{}
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.ID, &sc.UserName, &sc.Won, &sc.Guesses,
			&sc.Target, &sc.AttemptsAllowed, &sc.Date); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

/* -------------------------------- util --------------------------------- */

func marshalState(g *game.Game) (correct, history string, err error) {
	cb, err := json.Marshal(g.Correct)
	if err != nil {
		return "", "", err
	}
	hb, err := json.Marshal(g.History)
	if err != nil {
		return "", "", err
	}
	return string(cb), string(hb), nil
}
