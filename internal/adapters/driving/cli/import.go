package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

var (
	importCorpus bool
	importSubmit bool
	importWatch  bool
)

var documentImportCmd = &cobra.Command{
	Use:   "import [directory]",
	Short: "Register every supported file in a directory",
	Long: `Walk a directory and register each supported file (.txt, .md, .html,
.docx) that is not registered yet. Hidden files and directories are skipped.

With --watch the directory is then watched and new files are registered
as they are written, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentImport,
}

func init() {
	documentImportCmd.Flags().BoolVar(&importCorpus, "corpus", false, "add imported documents to the reference corpus")
	documentImportCmd.Flags().BoolVar(&importSubmit, "submit", false, "submit imported documents for processing")
	documentImportCmd.Flags().BoolVar(&importWatch, "watch", false, "keep watching for new files")
	documentCmd.AddCommand(documentImportCmd)
}

func runDocumentImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	opts := domain.ImportOptions{InCorpus: importCorpus, Submit: importSubmit}

	result, err := importService.Import(cmd.Context(), args[0], opts)
	if result != nil {
		for _, f := range result.Files {
			printImportedFile(cmd, f)
		}
		cmd.Printf("\nRegistered %d, skipped %d, failed %d\n", result.Registered, result.Skipped, result.Failed)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if !importWatch {
		return nil
	}

	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", args[0])
	return importService.Watch(cmd.Context(), args[0], opts, func(f domain.ImportedFile) {
		printImportedFile(cmd, f)
	})
}

func printImportedFile(cmd *cobra.Command, f domain.ImportedFile) {
	switch {
	case f.Skipped:
		// already registered
	case f.DocumentID == "":
		cmd.Printf("  failed   %s: %s\n", f.Path, f.Error)
	case f.Error != "":
		cmd.Printf("  added    %s -> %s (submit failed: %s)\n", f.Path, f.DocumentID, f.Error)
	default:
		cmd.Printf("  added    %s -> %s\n", f.Path, f.DocumentID)
	}
}
