package guess

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/vansante/go-ffprobe.v2"
)

const (
	defaultProbeTimeout = 10 * time.Second
	tagConfidence       = 0.95
)

// probeFunc defines the function signature used to execute ffprobe.
type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// Prober guesses series information from container tags read by ffprobe.
type Prober struct {
	probe   probeFunc
	Timeout time.Duration
}

// NewProber creates a Prober that shells out to the ffprobe binary.
func NewProber() *Prober {
	return &Prober{
		probe:   ffprobe.ProbeURL,
		Timeout: defaultProbeTimeout,
	}
}

// Guess probes path and reports a guess built from its format tags. ok is false
// when probing failed or the tags carry nothing usable.
func (p *Prober) Guess(ctx context.Context, path string) (Guess, bool) {
	g, err := p.guess(ctx, path)
	if err != nil {
		return Guess{}, false
	}
	return g, g.Has(FieldSeries) || g.Has(FieldEpisode)
}

func (p *Prober) guess(ctx context.Context, path string) (Guess, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := p.probe(ctx, path)
	if err != nil {
		return Guess{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if data == nil || data.Format == nil {
		return Guess{}, nil
	}

	return fromTags(data.Format.TagList), nil
}

// fromTags reads the iTunes/Matroska style tags {show, season_number, episode_sort}
// and falls back to parsing the title or comment tag.
func fromTags(tags map[string]interface{}) Guess {
	lookup := func(key string) string {
		for k, v := range tags {
			if strings.EqualFold(k, key) {
				return strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return ""
	}

	var parsed Guess
	for _, key := range []string{"title", "comment"} {
		if text := lookup(key); text != "" {
			parsed = Parse(text)
			if parsed.Has(FieldSeries) || parsed.Has(FieldEpisode) {
				break
			}
		}
	}

	g := parsed
	if show := lookup("show"); show != "" {
		if name, _ := extractNameAndYear(show); name != "" {
			g.Series = name
			g.set(FieldSeries, tagConfidence)
		}
	}
	if n, err := strconv.Atoi(lookup("season_number")); err == nil && n >= 0 {
		g.Season = n
		g.set(FieldSeason, tagConfidence)
	}
	if n, err := strconv.Atoi(lookup("episode_sort")); err == nil && n > 0 {
		g.Episode = n
		g.set(FieldEpisode, tagConfidence)
	}
	return g
}
