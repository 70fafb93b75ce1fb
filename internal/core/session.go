package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Digital-Shane/scrappy/internal/format"
	"github.com/Digital-Shane/scrappy/internal/guess"
	"github.com/Digital-Shane/scrappy/internal/infer"
	"github.com/Digital-Shane/scrappy/internal/log"
	"github.com/Digital-Shane/scrappy/internal/mapper"
	"github.com/Digital-Shane/scrappy/internal/mediaset"
	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/Digital-Shane/scrappy/internal/selector"
	"github.com/sirupsen/logrus"
)

// Config holds everything a scrape session needs. Provider and Files are
// required; everything else has a default.
type Config struct {
	Provider provider.Provider
	Files    mediaset.MediaSet

	// Name and ID seed the series. Either skips inference.
	Name string
	ID   int

	Language  string
	Inference infer.Options
	Selection selector.Options

	// Heuristic guesses from file names. Defaults to guess.FromFilename.
	Heuristic guess.Func
	// Prober supplies metadata guesses when no file name yields a series.
	Prober *guess.Prober
	// Formatter names the renamed files. Defaults to format.Default.
	Formatter format.Formatter

	// Cache, when set, fronts the provider and is closed with the session.
	Cache *provider.Cache
	// Retry, when set, retries transient provider errors.
	Retry *provider.RetryPolicy
	// Journal records renames. It is closed with the session.
	Journal JournalCloser

	Logger logrus.FieldLogger
}

// JournalCloser is a Recorder owned by the session.
type JournalCloser interface {
	Recorder
	io.Closer
}

// Scrape is one run from file discovery to rename. It is not safe for
// concurrent use.
type Scrape struct {
	provider  provider.Provider
	files     mediaset.MediaSet
	language  string
	inference infer.Options
	selection selector.Options
	prober    *guess.Prober
	formatter format.Formatter
	memo      *guess.Memo
	journal   Recorder
	logger    logrus.FieldLogger

	series  ResolvedSeries
	show    *provider.Show
	fileMap *mapper.FileMap

	closers []io.Closer
	closed  bool
}

// Report summarizes a Run.
type Report struct {
	Series    string
	Show      *provider.Show
	Batch     Batch
	Unmatched []string
	Renamed   int
	DryRun    bool
}

// New builds a session from cfg. The session owns cfg.Cache and cfg.Journal.
func New(cfg Config) (*Scrape, error) {
	if cfg.Provider == nil {
		return nil, errors.New("scrape: provider is required")
	}
	if cfg.Files == nil {
		return nil, errors.New("scrape: media set is required")
	}

	s := &Scrape{
		files:     cfg.Files,
		language:  cfg.Language,
		inference: cfg.Inference,
		selection: cfg.Selection,
		prober:    cfg.Prober,
		formatter: cfg.Formatter,
		memo:      guess.NewMemo(cfg.Heuristic),
		logger:    cfg.Logger,
		series:    NewResolvedSeries(cfg.Name, cfg.ID),
	}
	if s.formatter == nil {
		s.formatter = format.Default()
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	if s.selection.Language == "" {
		s.selection.Language = cfg.Language
	}

	p := cfg.Provider
	if cfg.Retry != nil {
		p = provider.Retrying(p, *cfg.Retry)
	}
	if cfg.Cache != nil {
		p = provider.Cached(p, cfg.Cache)
		s.closers = append(s.closers, cfg.Cache)
	}
	s.provider = p

	if cfg.Journal != nil {
		s.journal = cfg.Journal
		s.closers = append(s.closers, cfg.Journal)
	}
	return s, nil
}

// Series returns the session's series as currently known.
func (s *Scrape) Series() ResolvedSeries { return s.series }

// Identify infers the series name from the tracked files unless a name or ID was
// supplied.
func (s *Scrape) Identify(ctx context.Context) (string, error) {
	if s.series.Known() {
		return s.series.Name(), nil
	}

	var metadata guess.Func
	if s.prober != nil {
		metadata = func(path string) guess.Guess {
			g, _ := s.prober.Guess(ctx, path)
			return g
		}
	}

	files := s.files.Files()
	name, ok := infer.Infer(infer.Collect(files, s.memo.Guess, metadata), s.inference)
	if !ok {
		return "", fmt.Errorf("%d files: %w", len(files), ErrIdentification)
	}
	s.series.SetName(name)
	s.logger.WithFields(logrus.Fields{"series": name, "files": len(files)}).Info("Inferred series name")
	return name, nil
}

// Resolve finds the show for the series, by ID when known and by name search
// otherwise. The selected ID and the show name are back-filled into the series.
func (s *Scrape) Resolve(ctx context.Context) (*provider.Show, error) {
	if s.show != nil {
		return s.show, nil
	}

	if id, ok := s.series.ID(); ok {
		show, err := s.provider.Series(ctx, provider.SeriesRequest{ID: id, Language: s.language})
		if err != nil {
			return nil, &LookupError{Series: s.series.Name(), ID: id, Err: err}
		}
		return s.resolved(show), nil
	}

	name := s.series.Name()
	if name == "" {
		return nil, ErrIdentification
	}

	candidates, err := s.provider.Search(ctx, provider.SearchRequest{Name: name, Language: s.language})
	if err != nil {
		return nil, &LookupError{Series: name, Err: err}
	}
	s.logger.WithFields(logrus.Fields{"series": name, "candidates": len(candidates)}).Debug("Searched catalog")

	chosen, ok, err := selector.Select(ctx, name, candidates, s.selection)
	if err != nil {
		return nil, &LookupError{Series: name, Err: err}
	}
	if !ok {
		return nil, &LookupError{Series: name}
	}
	s.series.SetID(chosen.ID)
	s.logger.WithFields(logrus.Fields{
		"series":    name,
		"candidate": chosen.Name,
		"id":        chosen.ID,
	}).Info("Selected show")

	show, err := s.provider.Series(ctx, provider.SeriesRequest{ID: chosen.ID, Language: s.language})
	if err != nil {
		return nil, fmt.Errorf("%s (id %d): %w: %w", chosen.Name, chosen.ID, ErrMapping, err)
	}
	return s.resolved(show), nil
}

func (s *Scrape) resolved(show *provider.Show) *provider.Show {
	s.series.SetID(show.ID)
	s.series.SetName(show.Name)
	s.show = show
	return show
}

// Map pairs every tracked file with an episode of the resolved show.
func (s *Scrape) Map(ctx context.Context) (*mapper.FileMap, error) {
	show, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	m, err := mapper.Map(show, s.files.Files(), s.memo.Guess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", show.Name, ErrMapping, err)
	}
	for _, f := range m.Unmatched() {
		s.logger.WithFields(logrus.Fields{"file": f, "series": show.Name}).Warn("No matching episode")
	}
	s.fileMap = m
	return m, nil
}

// Plan computes the rename batch for the mapped files.
func (s *Scrape) Plan(ctx context.Context) (Batch, error) {
	m := s.fileMap
	if m == nil {
		var err error
		if m, err = s.Map(ctx); err != nil {
			return Batch{}, err
		}
	}
	batch := PlanBatch(m, s.formatter)
	for _, err := range batch.Errors {
		s.logger.WithError(err).Warn("Skipping file")
	}
	return batch, nil
}

// Rename commits batch as one transaction.
func (s *Scrape) Rename(ctx context.Context, batch Batch) (int, error) {
	n, err := NewTransaction(s.files, s.journal).Commit(ctx, batch)
	if err != nil {
		var rerr *RenameError
		if errors.As(err, &rerr) {
			s.logger.WithFields(logrus.Fields{"from": rerr.Old, "to": rerr.New}).WithError(rerr.Err).Error("Rename failed, rolled back")
		}
		return 0, err
	}
	for _, r := range batch.Renames {
		s.logger.WithFields(logrus.Fields{"from": r.Old, "to": r.New}).Debug("Renamed")
	}
	return n, nil
}

// Run identifies, resolves, maps and plans, then renames unless dryRun is set.
func (s *Scrape) Run(ctx context.Context, dryRun bool) (*Report, error) {
	name, err := s.Identify(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.Map(ctx)
	if err != nil {
		return nil, err
	}
	batch, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Series:    name,
		Show:      s.show,
		Batch:     batch,
		Unmatched: m.Unmatched(),
		DryRun:    dryRun,
	}
	if s.series.Name() != "" {
		report.Series = s.series.Name()
	}
	if dryRun {
		report.Batch.Renames = NewTransaction(s.files, nil).DryRun(batch)
		return report, nil
	}

	report.Renamed, err = s.Rename(ctx, batch)
	return report, err
}

// Revert restores the original names of every file renamed in this session.
func (s *Scrape) Revert() error {
	return s.files.Revert()
}

// Close releases the session's cache and journal. Every resource is released
// even if one fails; calling Close again does nothing.
func (s *Scrape) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
