// Package infer picks the most likely series name from a batch of guesses.
package infer

import (
	"strings"

	"github.com/Digital-Shane/scrappy/internal/guess"
)

// Options tunes inference.
type Options struct {
	// Floor drops guesses whose series confidence is not strictly above it.
	Floor float64
}

type tally struct {
	count int
	best  float64
}

// Infer returns the normalized series name with the highest score, where a name's
// score is its occurrence count times its best confidence. Ties go to the name
// seen first. ok is false when no guess survives filtering.
func Infer(guesses []guess.Guess, opts Options) (string, bool) {
	tallies := make(map[string]*tally)
	var order []string

	for _, g := range guesses {
		name := Normalize(g.Series)
		if name == "" {
			continue
		}
		confidence := g.Confidence(guess.FieldSeries)
		if confidence <= opts.Floor {
			continue
		}

		t, ok := tallies[name]
		if !ok {
			t = &tally{}
			tallies[name] = t
			order = append(order, name)
		}
		t.count++
		t.best = max(t.best, confidence)
	}

	var winner string
	bestScore := -1.0
	for _, name := range order {
		t := tallies[name]
		if score := float64(t.count) * t.best; score > bestScore {
			winner, bestScore = name, score
		}
	}
	return winner, winner != ""
}

// Normalize trims and lower-cases a series name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Collect builds the guesses for files from their names. When no file name yields
// a series, metadata guesses for every file are used instead. metadata may be nil.
func Collect(files []string, filename guess.Func, metadata guess.Func) []guess.Guess {
	if filename == nil {
		filename = guess.FromFilename
	}

	guesses := make([]guess.Guess, 0, len(files))
	found := false
	for _, f := range files {
		g := filename(f)
		found = found || g.Series != ""
		guesses = append(guesses, g)
	}
	if found || metadata == nil {
		return guesses
	}

	fallback := make([]guess.Guess, 0, len(files))
	for _, f := range files {
		fallback = append(fallback, metadata(f))
	}
	return fallback
}
