package core

import (
	"context"
	"errors"
	"testing"

	"github.com/Digital-Shane/scrappy/internal/mediaset"
	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/Digital-Shane/scrappy/internal/selector"
	"github.com/google/go-cmp/cmp"
)

type fakeProvider struct {
	searchFunc  func(provider.SearchRequest) ([]provider.Candidate, error)
	seriesFunc  func(provider.SeriesRequest) (*provider.Show, error)
	searchCalls int
	seriesCalls int
}

func (f *fakeProvider) Name() string        { return "fake" }
func (f *fakeProvider) Description() string { return "fake catalog" }
func (f *fakeProvider) Capabilities() provider.ProviderCapabilities {
	return provider.ProviderCapabilities{}
}
func (f *fakeProvider) Configure(map[string]interface{}) error { return nil }

func (f *fakeProvider) Search(ctx context.Context, req provider.SearchRequest) ([]provider.Candidate, error) {
	f.searchCalls++
	if f.searchFunc == nil {
		return nil, nil
	}
	return f.searchFunc(req)
}

func (f *fakeProvider) Series(ctx context.Context, req provider.SeriesRequest) (*provider.Show, error) {
	f.seriesCalls++
	if f.seriesFunc == nil {
		return nil, &provider.ProviderError{Provider: "fake", Code: provider.CodeNotFound, Message: "not found"}
	}
	return f.seriesFunc(req)
}

func catalog() *fakeProvider {
	return &fakeProvider{
		searchFunc: func(req provider.SearchRequest) ([]provider.Candidate, error) {
			return []provider.Candidate{{ID: 1, Name: "Show Name"}}, nil
		},
		seriesFunc: func(req provider.SeriesRequest) (*provider.Show, error) {
			if req.ID != 1 {
				return nil, &provider.ProviderError{Provider: "fake", Code: provider.CodeNotFound, Message: "not found"}
			}
			return testShow(), nil
		},
	}
}

func newScrape(t *testing.T, cfg Config) *Scrape {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunEndToEnd(t *testing.T) {
	files := mediaset.NewNameSet("Show.Name.S01E01.mkv", "Show.Name.S01E02.mkv")
	p := catalog()
	s := newScrape(t, Config{Provider: p, Files: files})

	report, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"Show.Name.S01E01.Pilot.mkv", "Show.Name.S01E02.Second.mkv"}
	if diff := cmp.Diff(want, files.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
	if report.Renamed != 2 || report.Series != "show name" || report.Show.ID != 1 {
		t.Errorf("Report = %+v", report)
	}
	series := s.Series()
	if id, ok := series.ID(); !ok || id != 1 {
		t.Errorf("series ID = %d, %v, want back-filled 1", id, ok)
	}
	if p.searchCalls != 1 || p.seriesCalls != 1 {
		t.Errorf("calls: search %d, series %d, want 1 and 1", p.searchCalls, p.seriesCalls)
	}

	if err := s.Revert(); err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Show.Name.S01E01.mkv", "Show.Name.S01E02.mkv"}, files.Files()); diff != "" {
		t.Errorf("Files() after Revert mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDryRun(t *testing.T) {
	files := mediaset.NewNameSet("Show.Name.S01E01.mkv", "Show.Name.S09E99.mkv")
	s := newScrape(t, Config{Provider: catalog(), Files: files})

	report, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.DryRun || report.Renamed != 0 {
		t.Errorf("Report = %+v, want dry run", report)
	}
	wantRenames := []Rename{{Old: "Show.Name.S01E01.mkv", New: "Show.Name.S01E01.Pilot.mkv"}}
	if diff := cmp.Diff(wantRenames, report.Batch.Renames); diff != "" {
		t.Errorf("planned renames mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Show.Name.S09E99.mkv"}, report.Unmatched); diff != "" {
		t.Errorf("Unmatched mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Show.Name.S01E01.mkv", "Show.Name.S09E99.mkv"}, files.Files()); diff != "" {
		t.Errorf("dry run changed files (-want +got):\n%s", diff)
	}
}

func TestRunFailures(t *testing.T) {
	boom := &provider.ProviderError{Provider: "fake", Code: provider.CodeUnavailable, Message: "down"}

	tests := []struct {
		name    string
		files   []string
		cfg     Config
		catalog func() *fakeProvider
		want    error
	}{
		{
			name:    "nothing to identify",
			files:   []string{"S01E01.mkv", "S01E02.mkv"},
			catalog: catalog,
			want:    ErrIdentification,
		},
		{
			name:  "no search results",
			files: []string{"Show.Name.S01E01.mkv"},
			catalog: func() *fakeProvider {
				p := catalog()
				p.searchFunc = func(provider.SearchRequest) ([]provider.Candidate, error) { return nil, nil }
				return p
			},
			want: ErrLookup,
		},
		{
			name:  "search failed",
			files: []string{"Show.Name.S01E01.mkv"},
			catalog: func() *fakeProvider {
				p := catalog()
				p.searchFunc = func(provider.SearchRequest) ([]provider.Candidate, error) { return nil, boom }
				return p
			},
			want: boom,
		},
		{
			name:    "unknown id",
			files:   []string{"Show.Name.S01E01.mkv"},
			cfg:     Config{ID: 42},
			catalog: catalog,
			want:    ErrLookup,
		},
		{
			name:  "episodes unavailable",
			files: []string{"Show.Name.S01E01.mkv"},
			catalog: func() *fakeProvider {
				p := catalog()
				p.seriesFunc = func(provider.SeriesRequest) (*provider.Show, error) { return nil, boom }
				return p
			},
			want: ErrMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := mediaset.NewNameSet(tt.files...)
			cfg := tt.cfg
			cfg.Provider = tt.catalog()
			cfg.Files = files
			s := newScrape(t, cfg)

			_, err := s.Run(context.Background(), false)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Run() error = %v, want %v", err, tt.want)
			}
			if diff := cmp.Diff(tt.files, files.Files()); diff != "" {
				t.Errorf("failed run changed files (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupErrorDetails(t *testing.T) {
	s := newScrape(t, Config{Provider: catalog(), Files: mediaset.NewNameSet("a.mkv"), ID: 42})
	_, err := s.Resolve(context.Background())

	var lerr *LookupError
	if !errors.As(err, &lerr) || lerr.ID != 42 {
		t.Fatalf("Resolve() error = %v, want *LookupError for id 42", err)
	}
	if !provider.IsNotFound(err) {
		t.Errorf("Resolve() error %v does not carry the not found cause", err)
	}
}

func TestResolveByID(t *testing.T) {
	p := catalog()
	s := newScrape(t, Config{Provider: p, Files: mediaset.NewNameSet("episode.S01E02.mkv"), ID: 1})

	name, err := s.Identify(context.Background())
	if err != nil || name != "" {
		t.Fatalf("Identify() = %q, %v, want no inference with an ID", name, err)
	}
	show, err := s.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if show.Name != "Show Name" || p.searchCalls != 0 {
		t.Errorf("Resolve() = %+v with %d searches", show, p.searchCalls)
	}
	series := s.Series()
	if series.Name() != "show name" {
		t.Errorf("series name = %q, want back-filled %q", series.Name(), "show name")
	}

	m, err := s.Map(context.Background())
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if ep, ok := m.Lookup("episode.S01E02.mkv"); !ok || ep.Title != "Second" {
		t.Errorf("Lookup() = %+v, %v", ep, ok)
	}
}

func TestResolveSuppliedNameSkipsInference(t *testing.T) {
	var queried string
	p := catalog()
	p.searchFunc = func(req provider.SearchRequest) ([]provider.Candidate, error) {
		queried = req.Name
		return []provider.Candidate{{ID: 1, Name: "Show Name"}}, nil
	}
	s := newScrape(t, Config{Provider: p, Files: mediaset.NewNameSet("Other.S01E01.mkv"), Name: "  Show NAME "})

	if _, err := s.Run(context.Background(), true); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if queried != "show name" {
		t.Errorf("searched %q, want %q", queried, "show name")
	}
}

func TestResolveInteractive(t *testing.T) {
	p := catalog()
	p.searchFunc = func(provider.SearchRequest) ([]provider.Candidate, error) {
		return []provider.Candidate{{ID: 7, Name: "Show Name (UK)"}, {ID: 1, Name: "Show Name"}}, nil
	}
	var offered int
	decision := selector.DecisionFunc(func(ctx context.Context, query string, cs []provider.Candidate) (provider.Candidate, bool, error) {
		offered = len(cs)
		return cs[1], true, nil
	})

	s := newScrape(t, Config{
		Provider:  p,
		Files:     mediaset.NewNameSet("Show.Name.S01E01.mkv"),
		Selection: selector.Options{Mode: selector.Interactive, Decision: decision},
	})
	show, err := s.Resolve(context.Background())
	if err == nil {
		t.Fatal("Resolve() before Identify should fail")
	}
	if _, err := s.Identify(context.Background()); err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	show, err = s.Resolve(context.Background())
	if err != nil || show.ID != 1 || offered != 2 {
		t.Errorf("Resolve() = %+v, %v after offering %d", show, err, offered)
	}
}

func TestRunRollsBackOnCollision(t *testing.T) {
	// The correctly named file is unchanged and blocks the second one.
	files := mediaset.NewNameSet("Show.Name.S01E01.Pilot.mkv", "copy.S01E01.mkv")
	s := newScrape(t, Config{Provider: catalog(), Files: files, Name: "Show Name"})

	_, err := s.Run(context.Background(), false)
	if !errors.Is(err, ErrRename) || !errors.Is(err, mediaset.ErrExists) {
		t.Fatalf("Run() error = %v, want ErrRename caused by ErrExists", err)
	}
	if diff := cmp.Diff([]string{"Show.Name.S01E01.Pilot.mkv", "copy.S01E01.mkv"}, files.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
}

type closer struct {
	recorder
	closes int
	err    error
}

func (c *closer) Close() error {
	c.closes++
	return c.err
}

func TestCloseReleasesEverything(t *testing.T) {
	journal := &closer{err: errors.New("disk full")}
	cache := provider.NewMemoryCache(0)

	s, err := New(Config{Provider: catalog(), Files: mediaset.NewNameSet("Show.Name.S01E01.mkv"), Journal: journal, Cache: cache})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Run(context.Background(), false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(journal.ops) != 1 {
		t.Errorf("journal recorded %d renames, want 1", len(journal.ops))
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d entries, want search and series", cache.Len())
	}

	if err := s.Close(); err == nil || err.Error() != "disk full" {
		t.Errorf("Close() error = %v, want journal error", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if journal.closes != 1 {
		t.Errorf("journal closed %d times, want 1", journal.closes)
	}
}

func TestNewRequiresProviderAndFiles(t *testing.T) {
	if _, err := New(Config{Files: mediaset.NewNameSet()}); err == nil {
		t.Error("New() without provider should fail")
	}
	if _, err := New(Config{Provider: catalog()}); err == nil {
		t.Error("New() without files should fail")
	}
}

func TestResolvedSeries(t *testing.T) {
	s := NewResolvedSeries(" The Office ", 0)
	if s.Name() != "the office" || !s.Known() {
		t.Errorf("NewResolvedSeries() = %+v", s)
	}
	if _, ok := s.ID(); ok {
		t.Error("ID set without one supplied")
	}
	if !s.SetID(5) || s.SetID(6) {
		t.Error("SetID() should accept the first ID only")
	}
	if id, _ := s.ID(); id != 5 {
		t.Errorf("ID() = %d, want 5", id)
	}
	s.SetName("Other")
	if s.Name() != "the office" {
		t.Errorf("SetName() replaced a known name: %q", s.Name())
	}

	var empty ResolvedSeries
	if empty.Known() {
		t.Error("zero series should not be known")
	}
}
