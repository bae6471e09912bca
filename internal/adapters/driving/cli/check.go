package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/extractors/pdf"
)

// pdfToolCheck is replaced in tests.
var pdfToolCheck = pdf.CheckAvailable

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check external tools and the embedding provider",
	Long: `Reports whether pdftotext is installed and pings the configured
embedding provider. Without a provider the engine falls back to text
comparison, which is reported as a warning.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := pdfToolCheck(); err != nil {
		cmd.Printf("PDF: %v (PDF uploads will fail)\n%s\n", err, pdf.InstallInstructions())
	} else {
		cmd.Println("PDF: pdftotext OK")
	}

	s := settingsService.Get()
	if !s.Embedding.IsConfigured() {
		cmd.Println("Embedding: not configured (text comparison only)")
		return nil
	}

	cmd.Printf("Embedding: %s %s... ", s.Embedding.Provider, s.Embedding.Model)
	if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding check failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}
