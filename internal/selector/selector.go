// Package selector chooses one remote series among the candidates of a search.
package selector

import (
	"context"
	"math"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/Digital-Shane/scrappy/internal/similarity"
	"golang.org/x/text/language"
)

// DefaultPrecision is the number of decimal places similarity is rounded to
// before popularity breaks ties.
const DefaultPrecision = 2

// Mode selects how a choice is made among several candidates.
type Mode int

const (
	// Threshold keeps candidates within Threshold of the query and ranks them.
	Threshold Mode = iota
	// Interactive hands the decision to a Decision collaborator.
	Interactive
)

// Decision asks someone (usually the user) to pick a candidate.
type Decision interface {
	// Choose returns the chosen candidate, or false for none.
	Choose(ctx context.Context, query string, candidates []provider.Candidate) (provider.Candidate, bool, error)
}

// DecisionFunc adapts a function to Decision.
type DecisionFunc func(ctx context.Context, query string, candidates []provider.Candidate) (provider.Candidate, bool, error)

// Choose calls f.
func (f DecisionFunc) Choose(ctx context.Context, query string, candidates []provider.Candidate) (provider.Candidate, bool, error) {
	return f(ctx, query, candidates)
}

// Options configures Select.
type Options struct {
	Mode Mode
	// Threshold is the largest accepted Difference between query and name.
	Threshold float64
	// Precision is the number of decimals similarity is bucketed to; a negative
	// value means DefaultPrecision.
	Precision int
	// Language drops candidates in another language when more than one remains.
	Language string
	Decision Decision
}

// Select picks a candidate for query. ok is false when nothing was selected; err
// is only set when the Decision collaborator fails.
func Select(ctx context.Context, query string, candidates []provider.Candidate, opts Options) (provider.Candidate, bool, error) {
	switch len(candidates) {
	case 0:
		return provider.Candidate{}, false, nil
	case 1:
		return candidates[0], true, nil
	}

	candidates = preferLanguage(candidates, opts.Language)

	if opts.Mode == Interactive && opts.Decision != nil {
		return opts.Decision.Choose(ctx, query, candidates)
	}

	var within []provider.Candidate
	for _, c := range candidates {
		if similarity.Difference(query, c.Name) <= opts.Threshold {
			within = append(within, c)
		}
	}

	switch len(within) {
	case 0:
		return provider.Candidate{}, false, nil
	case 1:
		return within[0], true, nil
	}
	return mostPopular(query, within, opts.Precision), true, nil
}

// preferLanguage drops candidates whose language is set and differs from
// language, unless that would drop all of them.
func preferLanguage(candidates []provider.Candidate, language string) []provider.Candidate {
	if language == "" {
		return candidates
	}

	var kept []provider.Candidate
	for _, c := range candidates {
		if c.Language == "" || sameLanguage(c.Language, language) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return candidates
	}
	return kept
}

// sameLanguage compares base languages, so "en" matches "en-US" and the
// ISO 639-3 code "eng".
func sameLanguage(a, b string) bool {
	return primaryLanguage(a) == primaryLanguage(b)
}

func primaryLanguage(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if tag, err := language.Parse(s); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	s, _, _ = strings.Cut(s, "-")
	return strings.ToLower(s)
}

// mostPopular keeps the candidates in the best similarity bucket and returns the
// most popular one. Earlier candidates win ties.
func mostPopular(query string, candidates []provider.Candidate, precision int) provider.Candidate {
	if precision < 0 {
		precision = DefaultPrecision
	}
	scale := math.Pow(10, float64(precision))

	bucket := func(c provider.Candidate) int64 {
		return int64(math.Round(similarity.Similarity(query, c.Name) * scale))
	}

	best := candidates[0]
	bestBucket := bucket(best)
	for _, c := range candidates[1:] {
		b := bucket(c)
		switch {
		case b > bestBucket:
			best, bestBucket = c, b
		case b == bestBucket && c.Popularity() > best.Popularity():
			best = c
		}
	}
	return best
}
