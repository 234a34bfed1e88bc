// Package runner checks, and optionally cleans, a list of files in
// parallel.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jangler/enforcer/check"
	"github.com/jangler/enforcer/clean"
	"github.com/jangler/enforcer/config"
	"github.com/jangler/enforcer/logging"
)

// MaxDefaultThreads caps the worker count picked when Threads is 0.
const MaxDefaultThreads = 12

// Runner runs the checks for one configuration.
type Runner struct {
	Config  config.Config
	Threads int  // 0 picks min(MaxDefaultThreads, NumCPU)
	Clean   bool // rewrite files with fixable problems

	// Progress receives a progress bar if it is a terminal.
	Progress io.Writer
}

// DefaultThreads returns the worker count used when none is configured.
func DefaultThreads() int {
	n := runtime.NumCPU()
	if n > MaxDefaultThreads {
		n = MaxDefaultThreads
	}
	return n
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Runner) progressBar(n int) *progressbar.ProgressBar {
	if r.Progress == nil || !isTerminal(r.Progress) || os.Getenv("CI") == "true" {
		return progressbar.NewOptions(n, progressbar.OptionSetVisibility(false))
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(r.Progress),
		progressbar.OptionSetDescription("checking"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(r.Progress, "\n")
		}),
	)
}

// Run checks files and returns one result per file in the same order.
// Files that cannot be read get a result with Err set; they do not stop the
// run. Run only fails if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, files []string) ([]check.Result, error) {
	logger := logging.Log(ctx)
	threads := r.Threads
	if threads < 1 {
		threads = DefaultThreads()
	}
	checkOpts := r.Config.CheckOptions()
	cleanOpts := r.Config.CleanOptions()

	results := make([]check.Result, len(files))
	bar := r.progressBar(len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer bar.Add(1)

			res, err := check.File(path, checkOpts)
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable file")
				results[i] = res
				return nil
			}
			logger.Debug().Str("path", path).Msgf("checked: %s", res.Flags)

			if r.Clean && res.Flags&check.Fixable != 0 {
				changed, err := clean.File(res, cleanOpts)
				if err != nil {
					logger.Error().Err(err).Str("path", path).Msg("failed to clean")
					res.Err = err
				} else {
					res.Cleaned = true
					if changed {
						logger.Info().Str("path", path).Msgf("%s -> cleaned", res.Flags&check.Fixable)
					}
				}
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	bar.Finish()
	if err == nil {
		err = ctx.Err()
	}
	return results, err
}
