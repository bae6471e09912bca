package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Analyse every document and summarise",
	Long: `Runs detection for every registered document and prints totals,
the plagiarism rate, the average originality and a risk histogram.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	report, err := reportService.Report(cmd.Context())
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	if reportJSON {
		return printJSON(cmd, report)
	}

	cmd.Println("Corpus Report")
	cmd.Println("=============")
	cmd.Printf("  Documents:           %d\n", report.TotalDocuments)
	cmd.Printf("  Analysed:            %d\n", report.Successful)
	cmd.Printf("  Plagiarised:         %d\n", report.Plagiarized)
	cmd.Printf("  Warnings:            %d\n", report.Warnings)
	cmd.Printf("  Errors:              %d\n", report.Errors)
	cmd.Printf("  Average originality: %.2f%%\n", report.AverageOriginality)
	cmd.Printf("  Plagiarism rate:     %.2f%%\n", report.PlagiarismRate)

	if len(report.RiskLevels) > 0 {
		cmd.Println()
		cmd.Println("Risk levels:")
		levels := make([]string, 0, len(report.RiskLevels))
		for level := range report.RiskLevels {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		for _, level := range levels {
			cmd.Printf("  %-10s %d\n", level, report.RiskLevels[level])
		}
	}
	return nil
}
