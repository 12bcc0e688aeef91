// internal/words/words.go
//
// Word source for the game engine.
//
// Responsibilities:
//   - Load the target word list from an environment-provided file or fall
//     back to the embedded default.
//   - Pick an immutable target word for a new game given a length range.
//
// Initialization behavior (Init):
//   1. If WORDS_FILE is set, load one word per line from that file.
//   2. Otherwise fall back to the embedded default list.
//
// Constraints:
//   • Words must be alphabetic (a–z); lists are normalized to lowercase.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"
)

//go:embed default_words.txt
var embeddedWords string

var (
	initOnce   sync.Once
	words      []string
	initialErr error
)

// ErrInvalidRange is returned when the maximum word length is not
// greater than the minimum.
var ErrInvalidRange = errors.New("words: maximum must be greater than minimum")

// ErrNoWord is returned when the list holds no word inside the range.
var ErrNoWord = errors.New("words: no word in requested length range")

// Init loads the word list exactly once.
// Returns an error if the list ends up empty.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_FILE"); path != "" {
			list, err := readWordFile(path)
			if err != nil {
				initialErr = err
				return
			}
			words = list
		} else {
			words = normalizeLines(embeddedWords)
		}
		if len(words) == 0 {
			initialErr = errors.New("words: word list is empty")
		}
	})
	return initialErr
}

// Pick returns a random word whose length is within [minLen, maxLen].
// The range is invalid when maxLen <= minLen.
func Pick(minLen, maxLen int) (string, error) {
	if maxLen <= minLen {
		return "", ErrInvalidRange
	}
	var pool []string
	for _, w := range words {
		if len(w) >= minLen && len(w) <= maxLen {
			pool = append(pool, w)
		}
	}
	if len(pool) == 0 {
		return "", ErrNoWord
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	return pool[nBig.Int64()], nil
}

// Count reports how many words are loaded.
func Count() int { return len(words) }

// readWordFile loads one word per line from a file, lowercases, trims,
// and keeps only alphabetic words.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(strings.ToLower(sc.Text()))
		if w != "" && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// normalizeLines processes the embedded multiline string into a slice of
// valid lowercase words.
func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(strings.ToLower(line))
		if w != "" && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
