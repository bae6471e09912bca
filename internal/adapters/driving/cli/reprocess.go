package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

var (
	reprocessFailed bool
	reprocessAll    bool
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [document-id...]",
	Short: "Reset and resubmit documents",
	Long: `Clears the last error, resets documents to queued and submits them again.

Select documents by ID, every failed document with --failed, or every
document with --all. Documents that already have a score keep it.`,
	RunE: runReprocess,
}

func init() {
	reprocessCmd.Flags().BoolVar(&reprocessFailed, "failed", false, "reprocess every failed document")
	reprocessCmd.Flags().BoolVar(&reprocessAll, "all", false, "reprocess every document")
	reprocessCmd.MarkFlagsMutuallyExclusive("failed", "all")
	rootCmd.AddCommand(reprocessCmd)
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if processingService == nil {
		return errors.New("processing service not configured")
	}

	ids, err := reprocessSelection(cmd, args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		cmd.Println("No documents to reprocess.")
		return nil
	}

	failed := 0
	for _, id := range ids {
		res, err := processingService.Reprocess(cmd.Context(), id)
		if err != nil {
			cmd.Printf("  %s: error: %v\n", id, err)
			failed++
			continue
		}
		if printSubmitResult(cmd, res) {
			failed++
		}
	}

	cmd.Printf("\nReprocessed %d document(s)\n", len(ids)-failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(ids))
	}
	return nil
}

func reprocessSelection(cmd *cobra.Command, args []string) ([]string, error) {
	if !reprocessFailed && !reprocessAll {
		if len(args) == 0 {
			return nil, errors.New("specify document IDs, --failed or --all")
		}
		return args, nil
	}
	if len(args) > 0 {
		return nil, errors.New("document IDs cannot be combined with --failed or --all")
	}
	if documentService == nil {
		return nil, errors.New("document service not configured")
	}

	filter := domain.DocumentFilter{}
	if reprocessFailed {
		filter.Status = domain.StatusFailed
	}
	docs, err := documentService.List(cmd.Context(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	return ids, nil
}
