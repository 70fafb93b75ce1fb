package mapper

import (
	"errors"
	"testing"

	"github.com/Digital-Shane/scrappy/internal/guess"
	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/google/go-cmp/cmp"
)

func testShow() *provider.Show {
	return &provider.Show{
		ID:   1,
		Name: "Show Name",
		Episodes: []provider.Episode{
			{Season: 0, Number: 1, Title: "Special", Show: "Show Name"},
			{Season: 1, Number: 1, Title: "Pilot", Show: "Show Name"},
			{Season: 1, Number: 2, Title: "Second", Show: "Show Name"},
			{Season: 1, Number: 2, Title: "Duplicate", Show: "Show Name"},
		},
	}
}

func TestMap(t *testing.T) {
	files := []string{
		"/tv/Show.Name.S01E01.mkv",
		"/tv/Show.Name.S01E02.mkv",
		"/tv/Show.Name.S02E01.mkv",
		"/tv/Show.Name.E05.mkv",
		"/tv/Show.Name.S00E01.mkv",
	}

	show := testShow()
	before := testShow()
	m, err := Map(show, files, nil)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	ep, ok := m.Lookup(files[0])
	if !ok || ep.Title != "Pilot" {
		t.Errorf("Lookup(S01E01) = %+v, %v, want Pilot", ep, ok)
	}
	ep, ok = m.Lookup(files[1])
	if !ok || ep.Title != "Second" {
		t.Errorf("Lookup(S01E02) = %+v, %v, want first matching record", ep, ok)
	}
	if ep, ok := m.Lookup(files[4]); !ok || ep.Title != "Special" {
		t.Errorf("Lookup(S00E01) = %+v, %v, want Special", ep, ok)
	}
	if _, ok := m.Lookup("/tv/unknown.mkv"); ok {
		t.Error("Lookup() of unknown file reports a match")
	}

	if diff := cmp.Diff([]string{files[0], files[1], files[4]}, m.Matched()); diff != "" {
		t.Errorf("Matched() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{files[2], files[3]}, m.Unmatched()); diff != "" {
		t.Errorf("Unmatched() mismatch (-want +got):\n%s", diff)
	}
	if m.Len() != len(files) {
		t.Errorf("Len() = %d, want %d", m.Len(), len(files))
	}
	if diff := cmp.Diff(before, show); diff != "" {
		t.Errorf("Map() mutated the show (-before +after):\n%s", diff)
	}

	again, err := Map(show, files, nil)
	if err != nil {
		t.Fatalf("second Map() error = %v", err)
	}
	if diff := cmp.Diff(m.Entries(), again.Entries()); diff != "" {
		t.Errorf("Map() not idempotent (-first +second):\n%s", diff)
	}
}

func TestMapCustomHeuristic(t *testing.T) {
	heuristic := func(name string) guess.Guess {
		return guess.Guess{Season: 1, Episode: 1, Scores: map[guess.Field]float64{
			guess.FieldSeason: 1, guess.FieldEpisode: 1,
		}}
	}

	m, err := Map(testShow(), []string{"a", "b", "a"}, heuristic)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, m.Matched()); diff != "" {
		t.Errorf("Matched() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapNilShow(t *testing.T) {
	if _, err := Map(nil, []string{"/tv/a.S01E01.mkv"}, nil); !errors.Is(err, ErrEpisodesUnavailable) {
		t.Errorf("Map(nil) error = %v, want ErrEpisodesUnavailable", err)
	}
}

func TestMapEmptyEpisodes(t *testing.T) {
	m, err := Map(&provider.Show{Name: "Empty"}, []string{"/tv/x.S01E01.mkv"}, nil)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(m.Matched()) != 0 || len(m.Unmatched()) != 1 {
		t.Errorf("Map() with no episodes: matched %v, unmatched %v", m.Matched(), m.Unmatched())
	}
}
