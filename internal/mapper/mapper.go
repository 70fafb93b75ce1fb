// Package mapper matches tracked files to the episode records of a show.
package mapper

import (
	"errors"

	"github.com/Digital-Shane/scrappy/internal/guess"
	"github.com/Digital-Shane/scrappy/internal/provider"
)

// ErrEpisodesUnavailable means the show had no episode list to match against.
var ErrEpisodesUnavailable = errors.New("episode list unavailable")

// Entry pairs a file with its matched episode. Episode is nil when absent.
type Entry struct {
	Path    string
	Episode *provider.Episode
}

// FileMap is an ordered mapping from file path to episode-or-absent.
type FileMap struct {
	entries []Entry
	index   map[string]int
}

// Entries returns the entries in file order.
func (m *FileMap) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports the number of files in the map.
func (m *FileMap) Len() int {
	return len(m.entries)
}

// Lookup returns the episode mapped to path. ok is false when the file is unknown
// or absent.
func (m *FileMap) Lookup(path string) (provider.Episode, bool) {
	i, found := m.index[path]
	if !found || m.entries[i].Episode == nil {
		return provider.Episode{}, false
	}
	return *m.entries[i].Episode, true
}

// Matched returns the paths that have an episode.
func (m *FileMap) Matched() []string {
	return m.filter(true)
}

// Unmatched returns the paths without an episode.
func (m *FileMap) Unmatched() []string {
	return m.filter(false)
}

func (m *FileMap) filter(matched bool) []string {
	var out []string
	for _, e := range m.entries {
		if (e.Episode != nil) == matched {
			out = append(out, e.Path)
		}
	}
	return out
}

// Map guesses season and episode for each file and pairs it with the first
// episode of show carrying both numbers. Files lacking either number, or with no
// matching record, are absent. show is never modified.
func Map(show *provider.Show, files []string, heuristic guess.Func) (*FileMap, error) {
	if show == nil {
		return nil, ErrEpisodesUnavailable
	}
	if heuristic == nil {
		heuristic = guess.FromFilename
	}

	m := &FileMap{
		entries: make([]Entry, 0, len(files)),
		index:   make(map[string]int, len(files)),
	}
	for _, f := range files {
		if _, dup := m.index[f]; dup {
			continue
		}
		m.index[f] = len(m.entries)
		m.entries = append(m.entries, Entry{Path: f, Episode: find(show, heuristic(f))})
	}
	return m, nil
}

func find(show *provider.Show, g guess.Guess) *provider.Episode {
	if !g.Has(guess.FieldSeason) || !g.Has(guess.FieldEpisode) {
		return nil
	}
	for i := range show.Episodes {
		ep := show.Episodes[i]
		if ep.Season == g.Season && ep.Number == g.Episode {
			return &ep
		}
	}
	return nil
}
