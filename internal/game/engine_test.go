package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	g := New("alice", "cat", 3)

	require.NotEmpty(t, g.ID)
	assert.Equal(t, "CAT", g.Target)
	assert.Equal(t, 3, g.AttemptsAllowed)
	assert.Equal(t, 3, g.AttemptsRemaining)
	assert.Empty(t, g.Correct)
	assert.Empty(t, g.History)
	assert.False(t, g.Over)
	assert.Equal(t, "playing", g.State())
	assert.Equal(t, "***", g.Reveal())
}

// Walks the full CAT scenario: correct guesses are free, a miss costs one
// attempt, and the win fires as soon as every position is discovered.
func TestApplyGuess_WinScenario(t *testing.T) {
	g := New("alice", "CAT", 3)

	msg := g.ApplyGuess("C")
	assert.Equal(t, "C**", msg)
	assert.Equal(t, 3, g.AttemptsRemaining)

	msg = g.ApplyGuess("Z")
	assert.Equal(t, "Incorrect, 2 attempts remaining: C**", msg)
	assert.Equal(t, 2, g.AttemptsRemaining)
	assert.Equal(t, "C**", g.Reveal())

	msg = g.ApplyGuess("A")
	assert.Equal(t, "CA*", msg)

	msg = g.ApplyGuess("T")
	assert.Equal(t, "You've won. The word was CAT", msg)
	assert.True(t, g.Over)
	assert.True(t, g.Won)
	assert.Equal(t, "won", g.State())
	assert.Equal(t, 1, g.GuessesUsed())
}

func TestApplyGuess_LossRevealsTarget(t *testing.T) {
	g := New("bob", "dog", 1)

	msg := g.ApplyGuess("x")
	assert.Equal(t, "Game Over! The answer was DOG", msg)
	assert.Equal(t, 0, g.AttemptsRemaining)
	assert.True(t, g.Over)
	assert.False(t, g.Won)
	assert.Equal(t, "lost", g.State())
	assert.Equal(t, 1, g.GuessesUsed())
}

func TestApplyGuess_FinishedGameIsNoOp(t *testing.T) {
	g := New("bob", "dog", 1)
	g.ApplyGuess("x")

	before := *g
	msg := g.ApplyGuess("d")
	assert.Equal(t, "Game has ended!", msg)
	assert.Equal(t, before.AttemptsRemaining, g.AttemptsRemaining)
	assert.Equal(t, before.Correct, g.Correct)
	assert.Len(t, g.History, len(before.History))
}

func TestApplyGuess_ValidationRejections(t *testing.T) {
	tests := map[string]struct {
		guess string
		want  string
	}{
		"empty":       {"", "Only a single letter is allowed!"},
		"too long":    {"ab", "Only a single letter is allowed!"},
		"digit":       {"7", "Guess must be a letter!"},
		"punctuation": {"!", "Guess must be a letter!"},
		"only spaces": {"   ", "Only a single letter is allowed!"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g := New("carol", "CAT", 3)
			msg := g.ApplyGuess(tc.guess)
			assert.Equal(t, tc.want, msg)
			// Rejections are free: no turn consumed, no history entry.
			assert.Equal(t, 3, g.AttemptsRemaining)
			assert.Empty(t, g.History)
			assert.False(t, g.Over)
		})
	}
}

func TestApplyGuess_CaseInsensitive(t *testing.T) {
	g := New("carol", "CAT", 3)
	assert.Equal(t, "C**", g.ApplyGuess("c"))
	assert.Equal(t, []int{0}, g.Correct)
}

func TestApplyGuess_RepeatedLetterFillsAllPositions(t *testing.T) {
	g := New("carol", "LLAMA", 5)

	assert.Equal(t, "LL***", g.ApplyGuess("l"))
	assert.Equal(t, []int{0, 1}, g.Correct)

	assert.Equal(t, "LLA*A", g.ApplyGuess("a"))
	assert.Equal(t, []int{0, 1, 2, 4}, g.Correct)
}

func TestApplyGuess_RepeatCorrectGuessIsIdempotent(t *testing.T) {
	g := New("carol", "CAT", 3)
	g.ApplyGuess("c")

	msg := g.ApplyGuess("C")
	assert.Equal(t, "C**", msg)
	assert.Equal(t, []int{0}, g.Correct)
	assert.Equal(t, 3, g.AttemptsRemaining)
}

func TestApplyGuess_WinWithNoAttemptsLeftToSpare(t *testing.T) {
	// A win fires even when only a single attempt remains.
	g := New("dave", "AB", 2)
	g.ApplyGuess("x") // 1 remaining

	g.ApplyGuess("a")
	msg := g.ApplyGuess("b")
	assert.Equal(t, "You've won. The word was AB", msg)
	assert.True(t, g.Won)
	assert.Equal(t, 1, g.AttemptsRemaining)
}

func TestAttemptsNeverNegativeAndNonIncreasing(t *testing.T) {
	g := New("eve", "CAT", 2)
	prev := g.AttemptsRemaining
	for _, guess := range []string{"x", "y", "z", "q"} {
		g.ApplyGuess(guess)
		assert.LessOrEqual(t, g.AttemptsRemaining, prev)
		assert.GreaterOrEqual(t, g.AttemptsRemaining, 0)
		prev = g.AttemptsRemaining
	}
}

func TestHistoryRecordsAcceptedGuessesInOrder(t *testing.T) {
	g := New("eve", "CAT", 3)
	g.ApplyGuess("c")
	g.ApplyGuess("z")
	g.ApplyGuess("!") // rejected, not logged

	require.Len(t, g.History, 2)
	assert.Equal(t, "C", g.History[0].Guess)
	assert.Equal(t, "C**", g.History[0].Message)
	assert.Equal(t, "Z", g.History[1].Guess)
	assert.Equal(t, "Incorrect, 2 attempts remaining: C**", g.History[1].Message)
}

func TestRevealMatchesTargetShape(t *testing.T) {
	g := New("eve", "BANANA", 6)
	g.ApplyGuess("n")

	r := g.Reveal()
	require.Len(t, r, len(g.Target))
	for i, c := range r {
		if c == Placeholder {
			continue
		}
		assert.Equal(t, rune(g.Target[i]), c)
	}
}
