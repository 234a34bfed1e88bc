package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jangler/enforcer/check"
	"github.com/jangler/enforcer/config"
	"github.com/jangler/enforcer/logging"
	"github.com/jangler/enforcer/report"
	"github.com/jangler/enforcer/runner"
	"github.com/jangler/enforcer/search"
	"github.com/jangler/enforcer/tabs"
	"github.com/jangler/enforcer/watch"
)

var version = "0.3.0"

// errProblems is returned when checked files still have problems.
var errProblems = eris.New("problems found")

// Command-line flags
type options struct {
	endings      []string
	clean        bool
	configPath   string
	status       bool
	quiet        bool
	color        bool
	tabs         bool
	length       int
	threads      int
	verbose      int
	debug        bool
	format       string
	crlf         bool
	finalNewline bool
	tabWidth     int
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "enforcer [flags] [path...]",
		Short:         "Keep source code whitespace consistent",
		Long:          manualString,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringSliceVarP(&opts.endings, "endings", "g", nil, `use these file endings (e.g. ".cpp,.h")`)
	flags.StringVarP(&opts.configPath, "config-file", "f", "", "path to configuration file")
	flags.BoolVarP(&opts.color, "color", "a", false, "use ANSI colored output")
	flags.BoolVarP(&opts.tabs, "tabs", "t", false, "leave tabs alone (without that tabs are considered wrong)")
	flags.IntVarP(&opts.length, "length", "l", 0, "max line length [not checked if 0]")
	flags.IntVar(&opts.tabWidth, "tab-width", 0, "tab stop width for conversion and line length")
	flags.BoolVar(&opts.crlf, "crlf", false, "report CRLF line endings")
	flags.BoolVar(&opts.finalNewline, "final-newline", false, "report files without a final newline")
	flags.BoolVarP(&opts.clean, "clean", "c", false, "clean up trailing whitespace, convert tabs to spaces and fix line endings")
	flags.IntVarP(&opts.threads, "threads", "j", 0, "number of threads [min(12, CPUs) if 0]")
	flags.CountVarP(&opts.verbose, "verbose", "v", "verbosity level")
	flags.BoolVar(&opts.debug, "debug", false, "only use to show debug output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only count found entries")

	cmd.Flags().BoolVarP(&opts.status, "config-status", "s", false, "check the configuration that is used")
	cmd.Flags().StringVar(&opts.format, "format", report.FormatText, "report format (text, json, yaml)")

	cmd.AddCommand(newExpandCmd())
	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}

// withLogger returns the command's context carrying a logger for opts.
func withLogger(cmd *cobra.Command, opts *options) context.Context {
	logger := logging.New(cmd.ErrOrStderr(), logging.Level(opts.debug, opts.verbose), opts.color)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, &logger)
}

// loadConfig reads the configuration for root and applies the flags that
// were set on the command line.
func loadConfig(cmd *cobra.Command, opts *options, root string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		dir := root
		if fi, statErr := os.Stat(root); statErr == nil && !fi.IsDir() {
			dir = filepath.Dir(root)
		}
		cfg, err = config.Find(dir)
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("endings") {
		cfg.Endings = opts.endings
	}
	if flags.Changed("tabs") {
		cfg.Tabs = opts.tabs
	}
	if flags.Changed("length") {
		cfg.LineLength = opts.length
	}
	if flags.Changed("tab-width") {
		cfg.TabWidth = opts.tabWidth
	}
	if flags.Changed("crlf") {
		cfg.CRLF = opts.crlf
	}
	if flags.Changed("final-newline") {
		cfg.FinalNewline = opts.finalNewline
	}
	return cfg, cfg.Validate()
}

func runCheck(cmd *cobra.Command, opts *options, args []string) error {
	if len(args) == 0 {
		args = []string{"./"}
	}
	ctx := withLogger(cmd, opts)
	logger := logging.Log(ctx)

	cfg, err := loadConfig(cmd, opts, args[0])
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		logger.Debug().Str("path", cfg.Path).Msg("using configuration")
	}
	if opts.status {
		return config.Encode(cmd.OutOrStdout(), cfg)
	}

	m, err := search.NewMatcher(cfg)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	var files []string
	for _, root := range args {
		found, err := search.Find(ctx, root, m)
		if err != nil {
			return err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	logger.Info().Msgf("checking %d files", len(files))

	r := &runner.Runner{Config: cfg, Threads: opts.threads, Clean: opts.clean}
	if !opts.quiet && opts.format == report.FormatText {
		r.Progress = cmd.ErrOrStderr()
	}
	results, err := r.Run(ctx, files)
	if err != nil {
		return err
	}

	err = report.Write(cmd.OutOrStdout(), opts.format, results, report.Options{
		Color:   opts.color,
		Verbose: opts.verbose > 0,
		Quiet:   opts.quiet,
	})
	if err != nil {
		return err
	}
	if report.Summarize(results).Remaining > 0 {
		return errProblems
	}
	return nil
}

func newExpandCmd() *cobra.Command {
	var (
		width   int
		fill    string
		escapes bool
	)
	cmd := &cobra.Command{
		Use:   "expand [text...]",
		Short: "Expand tabs in the given text, or in standard input, with a visible fill character",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tabs.Validate(width); err != nil {
				return err
			}
			runes := []rune(fill)
			if len(runes) != 1 {
				return eris.Errorf("fill must be a single character, got %q", fill)
			}
			e := tabs.Expander{TabStop: width, Fill: runes[0]}
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				for _, arg := range args {
					if escapes {
						unquoted, err := unescape(arg)
						if err != nil {
							return err
						}
						arg = unquoted
					}
					expanded, err := e.Expand(arg)
					if err != nil {
						return err
					}
					if _, err := fmt.Fprintln(out, expanded); err != nil {
						return err
					}
				}
				return nil
			}

			// Lines are expanded with their terminators so input bytes
			// other than tabs come through unchanged.
			r := bufio.NewReader(cmd.InOrStdin())
			for {
				line, err := r.ReadString('\n')
				if len(line) > 0 {
					expanded, expandErr := e.Expand(line)
					if expandErr != nil {
						return expandErr
					}
					if _, writeErr := io.WriteString(out, expanded); writeErr != nil {
						return writeErr
					}
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return eris.Wrap(err, "failed to read input")
				}
			}
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 8, "tab stop width")
	cmd.Flags().StringVar(&fill, "fill", string(tabs.DefaultFill), "fill character")
	cmd.Flags().BoolVarP(&escapes, "escapes", "e", false, `interpret backslash escapes such as \t in arguments`)
	return cmd
}

// unescape interprets Go string escapes in s.
func unescape(s string) (string, error) {
	unquoted, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return "", eris.Wrapf(err, "bad escape in %q", s)
	}
	return unquoted, nil
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Check files again whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "./"
			if len(args) > 0 {
				root = args[0]
			}
			ctx, stop := signal.NotifyContext(withLogger(cmd, opts), os.Interrupt)
			defer stop()
			logger := logging.Log(ctx)

			cfg, err := loadConfig(cmd, opts, root)
			if err != nil {
				return err
			}
			m, err := search.NewMatcher(cfg)
			if err != nil {
				return err
			}
			w, err := watch.New(root, m)
			if err != nil {
				return err
			}
			defer w.Close()

			r := &runner.Runner{Config: cfg, Threads: 1, Clean: opts.clean}
			ropts := report.Options{Color: opts.color, Verbose: opts.verbose > 0}
			logger.Info().Str("path", root).Msg("watching")
			return w.Run(ctx, func(ctx context.Context, path string) {
				results, err := r.Run(ctx, []string{path})
				if err != nil {
					return
				}
				dirty := results[:0]
				for _, res := range results {
					if res.Flags != check.Flags(0) {
						dirty = append(dirty, res)
					}
				}
				if len(dirty) == 0 {
					logger.Info().Str("path", path).Msg("ok")
					return
				}
				if err := report.Text(cmd.OutOrStdout(), dirty, ropts); err != nil {
					logger.Error().Err(err).Msg("failed to write report")
				}
			})
		},
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case eris.Is(err, errProblems):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
