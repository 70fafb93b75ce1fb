package core

import "github.com/Digital-Shane/scrappy/internal/infer"

// ResolvedSeries is the series a session works on: a normalized name and an
// optional catalog ID. Once set, the ID never changes and takes precedence over
// the name for lookups.
type ResolvedSeries struct {
	name string
	id   int
}

// NewResolvedSeries returns a series from a user supplied name and ID. Either may
// be zero.
func NewResolvedSeries(name string, id int) ResolvedSeries {
	s := ResolvedSeries{name: infer.Normalize(name)}
	s.SetID(id)
	return s
}

// Name returns the normalized name, empty when unknown.
func (s *ResolvedSeries) Name() string { return s.name }

// ID returns the catalog ID and whether it is set.
func (s *ResolvedSeries) ID() (int, bool) { return s.id, s.id > 0 }

// Known reports whether a lookup is possible.
func (s *ResolvedSeries) Known() bool { return s.id > 0 || s.name != "" }

// SetID records id if none is set yet. It reports whether id is now the ID.
func (s *ResolvedSeries) SetID(id int) bool {
	if id <= 0 {
		return false
	}
	if s.id == 0 {
		s.id = id
	}
	return s.id == id
}

// SetName fills in the name when it is still unknown.
func (s *ResolvedSeries) SetName(name string) {
	if s.name == "" {
		s.name = infer.Normalize(name)
	}
}
