package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/scrappy/internal/config"
	"github.com/Digital-Shane/scrappy/internal/core"
	"github.com/Digital-Shane/scrappy/internal/format"
	"github.com/Digital-Shane/scrappy/internal/guess"
	"github.com/Digital-Shane/scrappy/internal/infer"
	"github.com/Digital-Shane/scrappy/internal/log"
	"github.com/Digital-Shane/scrappy/internal/mediaset"
	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/Digital-Shane/scrappy/internal/provider/tmdb"
	"github.com/Digital-Shane/scrappy/internal/provider/tvdb"
	"github.com/Digital-Shane/scrappy/internal/selector"
	"github.com/Digital-Shane/scrappy/internal/tui/chooser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type renameOptions struct {
	auto       bool
	test       bool
	recursive  bool
	id         int
	name       string
	language   string
	confidence float64
	threshold  float64
	provider   string
	format     string
}

// newRegistry lists the catalogs a rename can use.
var newRegistry = func() *provider.Registry {
	reg := provider.NewRegistry()
	_ = reg.Register(tmdb.New(), tvdb.New())
	return reg
}

// newDecision is the interactive chooser used when no threshold applies.
var newDecision = func() selector.Decision {
	return chooser.NewChooser(nil, nil)
}

func newRenameCommand(global *globalOptions) *cobra.Command {
	opts := &renameOptions{}

	cmd := &cobra.Command{
		Use:   "rename [PATH...]",
		Short: "Identify the series of the given files and rename them by episode",
		Long: `Rename collects the video files under each PATH (the current
directory by default), infers the series name from the file names, looks it up
and renames every file it can match to an episode.

With --test the computed names are printed and nothing is renamed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args, global, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.auto, "auto", "a", false, "Never ask; pick candidates by threshold only")
	f.BoolVarP(&opts.test, "test", "t", false, "Print the planned renames without renaming")
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "Descend into subdirectories")
	f.IntVarP(&opts.id, "id", "i", 0, "Catalog ID of the series, skips name search")
	f.StringVar(&opts.name, "name", "", "Series name, skips inference")
	f.StringVarP(&opts.language, "lang", "l", "", "Catalog language")
	f.Float64Var(&opts.confidence, "confidence", 0, "Minimum confidence of a file name guess")
	f.Float64Var(&opts.threshold, "thresh", 0, "Largest name difference accepted without asking (0-1)")
	f.StringVar(&opts.provider, "provider", "", "Catalog: tmdb or tvdb")
	f.StringVar(&opts.format, "format", "", "Episode name template, e.g. \"{show} - {ecode} - {title}\"")
	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, global *globalOptions, opts *renameOptions) (*config.Config, error) {
	cfg, err := config.Load(global.cfgPath, global.profile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("lang") {
		cfg.Language = opts.language
	}
	if f.Changed("confidence") {
		cfg.Confidence = opts.confidence
	}
	if f.Changed("thresh") {
		cfg.Threshold = opts.threshold
	}
	if f.Changed("recursive") {
		cfg.Recursive = opts.recursive
	}
	if f.Changed("provider") {
		cfg.Provider = opts.provider
	}
	if f.Changed("format") {
		cfg.EpisodeFormat = opts.format
	}
	if global.logLevel != "" {
		cfg.LogLevel = global.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRename(cmd *cobra.Command, args []string, global *globalOptions, opts *renameOptions) error {
	cfg, err := loadConfig(cmd, global, opts)
	if err != nil {
		return err
	}
	logger := log.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())

	formatter, err := format.New(cfg.EpisodeFormat)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := mediaset.NewFileSet(mediaset.Options{Recursive: cfg.Recursive}, paths...)
	if err != nil {
		return err
	}
	if files.Len() == 0 {
		return fmt.Errorf("no video files found in %v", paths)
	}

	catalog, err := enableProvider(newRegistry(), cfg)
	if err != nil {
		return err
	}

	scfg := core.Config{
		Provider:  catalog,
		Files:     files,
		Name:      opts.name,
		ID:        opts.id,
		Language:  cfg.Language,
		Inference: infer.Options{Floor: cfg.Confidence},
		Selection: selector.Options{
			Mode:      selector.Threshold,
			Threshold: cfg.Threshold,
			Precision: cfg.Precision,
			Language:  cfg.Language,
		},
		Prober:    guess.NewProber(),
		Formatter: formatter,
		Retry:     &provider.DefaultRetryPolicy,
		Cache:     openCache(cfg, catalog.Name(), logger),
		Logger:    logger,
	}
	if !opts.auto && cfg.Threshold == 0 && isTerminal(cmd.InOrStdin()) {
		scfg.Selection.Mode = selector.Interactive
		scfg.Selection.Decision = newDecision()
	}
	if !opts.test {
		scfg.Journal = openJournal(cfg, args, logger)
	}

	scrape, err := core.New(scfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := scrape.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Failed to release session resources")
		}
	}()

	report, err := scrape.Run(cmd.Context(), opts.test)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

// enableProvider configures and enables the catalog named in cfg.
func enableProvider(reg *provider.Registry, cfg *config.Config) (provider.Provider, error) {
	p, ok := reg.Get(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", cfg.Provider, reg.List())
	}

	settings := map[string]interface{}{"language": cfg.Language}
	if key := cfg.APIKey(cfg.Provider); key != "" {
		settings["api_key"] = key
	} else if p.Capabilities().RequiresAuth {
		return nil, fmt.Errorf("%s needs an API key: set %s_api_key in the config file or SCRAPPY_%s_API_KEY",
			cfg.Provider, cfg.Provider, strings.ToUpper(cfg.Provider))
	}

	if err := reg.Configure(cfg.Provider, settings); err != nil {
		return nil, err
	}
	if err := reg.Enable(cfg.Provider); err != nil {
		return nil, err
	}
	return reg.Enabled(cfg.Provider)
}

// openCache returns the persisted response cache, or an in-memory one when the
// file cannot be opened. Nil means caching is disabled.
func openCache(cfg *config.Config, providerName string, logger logrus.FieldLogger) *provider.Cache {
	if !cfg.CacheEnabled {
		return nil
	}
	ttl := time.Duration(cfg.CacheHours) * time.Hour

	path, err := config.CachePath(providerName)
	if err == nil {
		var c *provider.Cache
		if c, err = provider.OpenCache(path, ttl); err == nil {
			if !c.Persistent() {
				logger.WithField("path", path).Info("Cache file in use by another process, caching in memory")
			}
			return c
		}
	}
	logger.WithError(err).Warn("Response cache unavailable, caching in memory")
	return provider.NewMemoryCache(ttl)
}

// openJournal starts a journal session and prunes expired ones. Nil means
// journaling is disabled or unavailable.
func openJournal(cfg *config.Config, args []string, logger logrus.FieldLogger) core.JournalCloser {
	if !cfg.EnableLogging {
		return nil
	}
	dir, err := config.LogDir()
	if err != nil {
		logger.WithError(err).Warn("Journal disabled")
		return nil
	}
	if err := log.Cleanup(dir, cfg.LogRetentionDays); err != nil {
		logger.WithError(err).Warn("Failed to prune old journal sessions")
	}

	journal := log.NewJournal(dir, true)
	if err := journal.Start("rename", args); err != nil {
		logger.WithError(err).Warn("Journal disabled")
		return nil
	}
	return journal
}

func printReport(w io.Writer, report *core.Report) {
	if report.Show != nil {
		fmt.Fprintf(w, "%s (id %d): %d episodes\n", report.Show.Name, report.Show.ID, len(report.Show.Episodes))
	}

	if len(report.Batch.Renames) > 0 {
		rows := make([][]string, 0, len(report.Batch.Renames))
		for i, r := range report.Batch.Renames {
			rows = append(rows, []string{strconv.Itoa(i + 1), filepath.Base(r.Old), filepath.Base(r.New)})
		}
		fmt.Fprintln(w, renderTable([]string{"#", "From", "To"}, rows, []columnAlignment{alignRight}))
	}

	for _, f := range report.Unmatched {
		fmt.Fprintf(w, "no episode: %s\n", f)
	}
	for _, err := range report.Batch.Errors {
		fmt.Fprintf(w, "skipped: %v\n", err)
	}

	switch {
	case report.DryRun:
		fmt.Fprintf(w, "%d files would be renamed, %d already named\n", len(report.Batch.Renames), len(report.Batch.Unchanged))
	default:
		fmt.Fprintf(w, "%d files renamed, %d already named\n", report.Renamed, len(report.Batch.Unchanged))
	}
}
