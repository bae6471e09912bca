// Package cli provides the plagscan command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

// Services consumed by the commands. Nil services report "not configured".
var (
	documentService   driving.DocumentService
	processingService driving.ProcessingService
	detector          driving.Detector
	reportService     driving.ReportService
	importService     driving.ImportService
	settingsService   driving.SettingsService
	workerPool        driving.WorkerPool
	scheduler         driving.Scheduler
)

// Services holds the driving ports wired by main.
type Services struct {
	Documents  driving.DocumentService
	Processing driving.ProcessingService
	Detector   driving.Detector
	Reports    driving.ReportService
	Imports    driving.ImportService
	Settings   driving.SettingsService
	Workers    driving.WorkerPool
	Scheduler  driving.Scheduler
}

var rootCmd = &cobra.Command{
	Use:   "plagscan",
	Short: "Plagiarism detection for document corpora",
	Long: `plagscan compares documents against a reference corpus and reports
an originality score, a citation estimate and the matching sources.

Documents are registered, submitted for processing (text extraction,
vectorization and analysis), and their verdicts stored for review.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	documentService = s.Documents
	processingService = s.Processing
	detector = s.Detector
	reportService = s.Reports
	importService = s.Imports
	settingsService = s.Settings
	workerPool = s.Workers
	scheduler = s.Scheduler
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
