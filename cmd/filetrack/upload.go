package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/phrazzld/filetrack/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelUploads bounds concurrent upload requests from one command.
const maxParallelUploads = 4

// errSomeUploadsFailed is returned when at least one file was not accepted.
var errSomeUploadsFailed = errors.New("some uploads failed")

// uploadResult is the outcome of uploading one file.
type uploadResult struct {
	path string
	size int64
	task domain.Task
	err  error
}

func newUploadCmd(flags *globalFlags) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload one or more files",
		Long: `Upload validates and uploads each file, printing the task id assigned by
the server. With --wait it keeps polling and prints every status change
until all tasks reach a final status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(flags)
			if err != nil {
				return err
			}
			log := newCommandLogger(cmd.ErrOrStderr(), flags.logLevel)

			out := &syncWriter{w: cmd.OutOrStdout()}
			var opts []tracker.Option
			if wait {
				opts = append(opts, tracker.WithOnChange(func(t domain.Task) {
					if t.Status != domain.StatusPending {
						out.printf("%s\t%s\n", t.ID, t.Status)
					}
				}))
			}

			t := newTracker(cfg, log, opts...)
			defer t.Close()

			results := uploadAll(cmd.Context(), t, args)

			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
					out.printf("%s\terror: %v\n", r.path, r.err)
					continue
				}
				out.printf("%s\t%s\t%s\n", r.task.ID, r.path, humanize.IBytes(uint64(r.size)))
			}

			if wait {
				if err := waitForTasks(cmd.Context(), t, cfg.Poller.Interval/4); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errSomeUploadsFailed, failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until every task reaches a final status")
	return cmd
}

// uploadAll uploads every path concurrently and returns results in input
// order. A failing file does not stop the others.
func uploadAll(ctx context.Context, t *tracker.Tracker, paths []string) []uploadResult {
	results := make([]uploadResult, len(paths))

	var g errgroup.Group
	g.SetLimit(maxParallelUploads)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = uploadOne(ctx, t, path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func uploadOne(ctx context.Context, t *tracker.Tracker, path string) uploadResult {
	res := uploadResult{path: path}

	file, closer, err := domain.OpenFile(path)
	if err != nil {
		res.err = err
		return res
	}
	defer closer.Close()

	res.size = file.Size
	res.task, res.err = t.Upload(ctx, file)
	return res
}

// waitForTasks blocks until no task is being polled or ctx is done.
func waitForTasks(ctx context.Context, t *tracker.Tracker, tick time.Duration) error {
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for t.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// syncWriter serializes writes from the poller goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}
