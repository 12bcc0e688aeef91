// internal/game/types.go
//
// Core type definitions for the hangman game engine.
// Defines:
//   - HistoryEntry: one accepted guess and the message it produced.
//   - Game: state for a single in-progress or finished game.

package game

// Placeholder is the character shown at undiscovered target positions.
const Placeholder = '*'

// HistoryEntry records one accepted guess in order of submission.
type HistoryEntry struct {
	Message string `json:"message"`
	Guess   string `json:"guess"`
}

// Game holds the state of a single hangman game session.
type Game struct {
	ID                string         // Unique game identifier (random hex string).
	UserName          string         // Owning user (immutable).
	Target            string         // The secret word (always uppercase).
	AttemptsAllowed   int            // Attempts budget fixed at creation.
	AttemptsRemaining int            // Non-increasing, never negative.
	Correct           []int          // Discovered target positions, sorted, unique.
	History           []HistoryEntry // Ordered log of accepted guesses.
	Over              bool           // True once the game is over (won or lost).
	Won               bool           // True if the game was finished with a win.
}

// State reports a coarse string representation of the current game state.
func (g *Game) State() string {
	if g.Over {
		if g.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}
