package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

var submitCmd = &cobra.Command{
	Use:   "submit [document-id...]",
	Short: "Submit documents for processing",
	Long: `Hand documents to the processing pipeline. Each document is queued for
a worker; when the queue is unavailable it is processed immediately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if processingService == nil {
		return errors.New("processing service not configured")
	}

	results, err := processingService.SubmitBatch(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}

	failed := 0
	for i := range results {
		if printSubmitResult(cmd, &results[i]) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d submission(s) failed", failed, len(results))
	}
	return nil
}

// printSubmitResult prints one outcome and reports whether it failed.
func printSubmitResult(cmd *cobra.Command, r *domain.SubmitResult) bool {
	switch {
	case r.Mode == domain.SubmitAsync:
		cmd.Printf("  %s: queued (task %s)\n", r.DocumentID, r.TaskID)
	case r.Mode == "":
		cmd.Printf("  %s: error: %s\n", r.DocumentID, r.Err)
		return true
	case r.Err != "":
		cmd.Printf("  %s: %s (%s)\n", r.DocumentID, r.Status, r.Err)
		return r.Status != domain.StatusCompleted
	default:
		cmd.Printf("  %s: %s (processed inline)\n", r.DocumentID, r.Status)
	}
	return r.Status == domain.StatusFailed
}
