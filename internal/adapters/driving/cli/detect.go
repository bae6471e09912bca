package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

var detectJSON bool

var detectCmd = &cobra.Command{
	Use:   "detect [document-id]",
	Short: "Analyse a document against the corpus",
	Long: `Runs plagiarism detection for a processed document and prints the
verdict. Nothing is stored; use "plagscan submit" to record a score.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "output the verdict as JSON")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	if detector == nil {
		return errors.New("detector not configured")
	}

	v, err := detector.DetectPlagiarism(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if detectJSON {
		return printJSON(cmd, v)
	}

	printVerdict(cmd, v)
	return nil
}

func printVerdict(cmd *cobra.Command, v *domain.Verdict) {
	cmd.Printf("Document: %s\n\n", v.DocumentID)
	cmd.Printf("  Originality: %.2f%%\n", v.Originality)
	cmd.Printf("  Similarity:  %.2f%%\n", v.Similarity)
	cmd.Printf("  Citations:   %.2f%%\n", v.Citations)
	cmd.Printf("  Risk:        %s\n", v.Risk)
	cmd.Printf("  Plagiarised: %t\n", v.IsPlagiarized)
	cmd.Printf("  %s\n", v.Message)

	if len(v.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i := range v.Sources {
		src := &v.Sources[i]
		name := src.Name
		if name == "" {
			name = src.DocumentID
		}
		cmd.Printf("  [%d] %s  match %.2f%%  citations %.2f%%", i+1, name, src.MatchPercent, src.CitationPercent)
		if src.Method != "" {
			cmd.Printf("  (%s)", src.Method)
		}
		cmd.Println()
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
