package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run processing workers",
	Long: `Consume queued documents and run the processing pipeline with retries.
The scheduler also runs, resubmitting documents stuck in the queue.

Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if workerPool == nil {
		return errors.New("worker pool not configured")
	}

	cmd.Println("Workers started. Press Ctrl+C to stop.")
	return runBackground(cmd.Context())
}

// runBackground runs the worker pool and scheduler until ctx is cancelled
// or either of them fails.
func runBackground(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := workerPool.Run(gctx)
		if errors.Is(err, domain.ErrNotImplemented) {
			return errors.New("task queue unavailable: check queue.backend and cache.addr")
		}
		return err
	})

	if scheduler != nil {
		g.Go(func() error {
			err := scheduler.Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err := g.Wait()
	logger.Info("workers stopped")
	return err
}
