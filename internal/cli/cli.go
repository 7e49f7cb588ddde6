package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/config"
	"github.com/pfrederiksen/parole-stats/internal/logger"
	"github.com/pfrederiksen/parole-stats/internal/report"
	"github.com/pfrederiksen/parole-stats/internal/runner"
	"github.com/pfrederiksen/parole-stats/internal/scraper"
	"github.com/pfrederiksen/parole-stats/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// options holds the flag values shared by all commands
type options struct {
	source   string
	config   string
	dataDir  string
	logLevel string
	verbose  bool

	start  string
	end    string
	date   string
	format string
}

// settings is the resolved configuration of one invocation
type settings struct {
	registry *config.Registry
	source   *config.SourceConfig
	store    *storage.Storage
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "parole-stats",
		Short: "Download the daily Cuban parole approval reports",
		Long: `A CLI tool that downloads the daily parole approval statistics published
for Cuban nationals and stores them as CSV files, one directory per report date.
Each run resumes after the latest stored date and stops before today.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "Source name from the registry (default: registry default)")
	cmd.PersistentFlags().StringVar(&opts.config, "config", "", "Path to a source registry YAML file (default: built-in registry)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Report directory (default: the source's data_dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging and print run metrics")

	cmd.Flags().StringVar(&opts.start, "start", "", "First report date, YYYY-MM-DD (default: day after the latest stored report)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Stop before this date, YYYY-MM-DD (default: today)")

	cmd.AddCommand(newResolveCmd(opts), newLatestCmd(opts), newSourcesCmd(opts))

	return cmd
}

func newResolveCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the candidate report URLs for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(opts)
			if err != nil {
				return err
			}

			date, err := parseDate("--date", opts.date)
			if err != nil {
				return err
			}

			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}

			urls, err := s.source.Resolver(scraper.New()).Resolve(date)
			if err != nil {
				return err
			}

			return WriteURLs(cmd.OutOrStdout(), date, urls, format)
		},
	}

	cmd.Flags().StringVar(&opts.date, "date", "", "Report date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.MarkFlagRequired("date")

	return cmd
}

func newLatestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the latest stored report date",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(opts)
			if err != nil {
				return err
			}

			latest, ok, err := s.store.LatestDate()
			if err != nil {
				return err
			}

			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), latest.Format(report.DateLayout))
			return nil
		},
	}
}

func newSourcesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(opts)
			if err != nil {
				return err
			}

			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}

			return WriteSources(cmd.OutOrStdout(), s.registry, format)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")

	return cmd
}

// setup loads the environment and registry, configures logging and opens storage.
// Flags win over environment variables, which win over the registry.
func setup(opts *options) (*settings, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(config.First(opts.logLevel, env.LogLevel, string(logger.LevelInfo)))
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	reg, err := config.Load(opts.config)
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}

	src, err := reg.Source(config.First(opts.source, env.Source))
	if err != nil {
		return nil, err
	}

	store, err := storage.New(config.First(opts.dataDir, env.DataDir, src.DataDir))
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	return &settings{registry: reg, source: src, store: store}, nil
}

// runDownload is the main command logic
func runDownload(cmd *cobra.Command, opts *options) error {
	s, err := setup(opts)
	if err != nil {
		return err
	}

	start, end, err := downloadRange(s, opts, time.Now())
	if err != nil {
		return err
	}

	if !start.Before(end) {
		logger.Info("reports up to date", logger.Fields{
			"source":   s.source.Name,
			"data_dir": s.store.DataDir(),
			"next":     start.Format(report.DateLayout),
		})
		return nil
	}

	client := scraper.New()
	r := runner.New(s.source.Resolver(client), client, s.source.Extractor(), s.store)

	err = r.DownloadRange(start, end)

	if opts.verbose {
		logger.Info("run metrics", logger.MetricsSnapshot())
	}

	if err != nil {
		return fmt.Errorf("downloading reports: %w", err)
	}
	return nil
}

// downloadRange returns [start, end) for a run: by default from the day after
// the latest stored report (or the source's initial date) up to today
func downloadRange(s *settings, opts *options, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if opts.start != "" {
		d, err := parseDate("--start", opts.start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	} else {
		initial, err := s.source.Initial()
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		latest, ok, err := s.store.LatestDate()
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = runner.StartDate(latest, ok, initial)
	}

	end := runner.Today(now)
	if opts.end != "" {
		d, err := parseDate("--end", opts.end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = d
	}

	return start, end, nil
}

func parseDate(flag, value string) (time.Time, error) {
	d, err := time.Parse(report.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q (want YYYY-MM-DD)", flag, value)
	}
	return d, nil
}

func parseFormat(value string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(value))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", value)
	}
	return format, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
