// Package guess extracts a series name and season/episode numbers from noisy file
// names and from container metadata. Every extracted field carries a confidence in
// [0,1] so callers can weigh one source against another.
package guess

import (
	"github.com/Digital-Shane/scrappy/internal/media"
)

// Field identifies one piece of information a Guess may carry.
type Field string

const (
	FieldSeries  Field = "series"
	FieldSeason  Field = "season"
	FieldEpisode Field = "episode"
)

// Series name confidences. A name cut right before an explicit SxxEyy marker is
// the most trustworthy; a whole file name used as a title is the least.
const (
	seriesBeforeExplicit = 0.9
	seriesBeforeMarker   = 0.7
	seriesWholeName      = 0.4
)

// Guess is the result of parsing one name.
type Guess struct {
	Series  string
	Season  int
	Episode int
	Scores  map[Field]float64
}

// Func produces a Guess from a file path or name.
type Func func(name string) Guess

// Has reports whether the field was extracted.
func (g Guess) Has(f Field) bool {
	return g.Confidence(f) > 0
}

// Confidence returns the confidence for the field, 0 when absent.
func (g Guess) Confidence(f Field) float64 {
	if g.Scores == nil {
		return 0
	}
	return g.Scores[f]
}

func (g *Guess) set(f Field, confidence float64) {
	if g.Scores == nil {
		g.Scores = make(map[Field]float64, 3)
	}
	g.Scores[f] = confidence
}

// FromFilename parses the base name of path with its extension removed.
func FromFilename(path string) Guess {
	return Parse(media.Stem(path))
}

// Parse extracts what it can from text. Unrecognized input yields a Guess with
// Series set to the cleaned text at low confidence.
func Parse(text string) Guess {
	var g Guess

	stem := stripGroupTag(text)
	if stem == "" {
		return g
	}

	season, episode, m, ok := numbersFrom(stem)
	if ok {
		if m.hasSeason {
			g.Season = season
			g.set(FieldSeason, m.confidence)
		}
		g.Episode = episode
		g.set(FieldEpisode, m.confidence)
	}

	idx := findSeasonEpisodeIndex(stem)
	if name := seriesFrom(stem, idx); name != "" {
		g.Series = name
		switch {
		case idx > 0 && ok && m.confidence >= 0.9:
			g.set(FieldSeries, seriesBeforeExplicit)
		case idx > 0:
			g.set(FieldSeries, seriesBeforeMarker)
		default:
			g.set(FieldSeries, seriesWholeName)
		}
	}

	return g
}
