// internal/game/engine.go
//
// Core game engine for a single hangman session.
// Responsibilities:
//   - Create new games with a fixed target and attempts budget.
//   - Validate and apply single-letter guesses.
//   - Track discovered positions and render the reveal string.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - The engine is pure and synchronous; persistence and the atomic
//     score write-out belong to the store package.
//   - A guess consumes an attempt only when the letter is absent from
//     the target. Malformed input is rejected without consuming a turn
//     and without touching the history log.
//   - randomID() is a compact hex identifier for correlating server state.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// New constructs a new game instance for userName.
// The target is uppercased; attempts becomes both the budget and the
// initial attempts remaining.
func New(userName, target string, attempts int) *Game {
	return &Game{
		ID:                randomID(),
		UserName:          userName,
		Target:            strings.ToUpper(target),
		AttemptsAllowed:   attempts,
		AttemptsRemaining: attempts,
		Correct:           []int{},
		History:           []HistoryEntry{},
	}
}

// ApplyGuess validates and applies a guess, mutating the game state.
// It always returns a message describing the outcome.
//
// Rules:
//   - A finished game is a no-op ("Game has ended!"), never an error.
//   - Input is normalized to one uppercase letter. Anything else is a
//     rejection message: no attempt consumed, no history appended.
//   - A letter absent from the target consumes one attempt; reaching
//     zero ends the game as a loss and reveals the answer.
//   - A letter present in the target marks every matching position.
//     Re-guessing a discovered letter is idempotent and free.
//   - Discovering every position ends the game as a win regardless of
//     attempts remaining.
func (g *Game) ApplyGuess(raw string) string {
	if g.Over {
		return "Game has ended!"
	}

	guess := strings.ToUpper(strings.TrimSpace(raw))
	if len(guess) != 1 {
		return "Only a single letter is allowed!"
	}
	letter := rune(guess[0])
	if letter < 'A' || letter > 'Z' {
		return "Guess must be a letter!"
	}

	positions := g.match(letter)
	if len(positions) == 0 {
		g.AttemptsRemaining--
		if g.AttemptsRemaining <= 0 {
			g.AttemptsRemaining = 0
			g.Over = true
			msg := "Game Over! The answer was " + g.Target
			g.appendHistory(msg, guess)
			return msg
		}
		msg := fmt.Sprintf("Incorrect, %d attempts remaining: %s", g.AttemptsRemaining, g.Reveal())
		g.appendHistory(msg, guess)
		return msg
	}

	g.markCorrect(positions)
	if len(g.Correct) == len(g.Target) {
		g.Over = true
		g.Won = true
		msg := "You've won. The word was " + g.Target
		g.appendHistory(msg, guess)
		return msg
	}
	msg := g.Reveal()
	g.appendHistory(msg, guess)
	return msg
}

// Reveal renders the partially-masked target: discovered positions show
// their letter, all others the placeholder. Its length always equals the
// target length.
func (g *Game) Reveal() string {
	out := []rune(strings.Repeat(string(Placeholder), len(g.Target)))
	for _, i := range g.Correct {
		if i >= 0 && i < len(out) {
			out[i] = rune(g.Target[i])
		}
	}
	return string(out)
}

// match returns every target position holding letter.
func (g *Game) match(letter rune) []int {
	var out []int
	for i, r := range g.Target {
		if r == letter {
			out = append(out, i)
		}
	}
	return out
}

// markCorrect unions positions into the discovered set, keeping it
// sorted and duplicate-free so a repeated correct guess cannot
// double-count.
func (g *Game) markCorrect(positions []int) {
	seen := make(map[int]struct{}, len(g.Correct)+len(positions))
	for _, i := range g.Correct {
		seen[i] = struct{}{}
	}
	for _, i := range positions {
		seen[i] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	g.Correct = out
}

// appendHistory records an accepted guess. Never errors.
func (g *Game) appendHistory(message, guess string) {
	g.History = append(g.History, HistoryEntry{Message: message, Guess: guess})
}

// GuessesUsed is the number of attempts consumed so far; at termination
// it becomes the score's guess count.
func (g *Game) GuessesUsed() int {
	return g.AttemptsAllowed - g.AttemptsRemaining
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
