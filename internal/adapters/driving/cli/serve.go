package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/plagscan/internal/adapters/driving/httpapi"
)

var (
	serveAddr       string
	serveWithWorker bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Start the HTTP API for document status, submission and verdicts.

Routes:
  GET  /api/v1/documents
  GET  /api/v1/documents/:id
  GET  /api/v1/documents/:id/verdict
  POST /api/v1/documents/:id/submit
  POST /api/v1/documents/:id/reprocess
  GET  /api/v1/report

Use --with-worker to process the queue in the same process.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to http.addr)")
	serveCmd.Flags().BoolVar(&serveWithWorker, "with-worker", false, "also run the worker pool and scheduler")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := httpapi.NewServer(httpapi.Ports{
		Documents:  documentService,
		Processing: processingService,
		Detector:   detector,
		Reports:    reportService,
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		addr = settingsService.Get().HTTP.Addr
	}
	if addr == "" {
		addr = ":8080"
	}

	if serveWithWorker && workerPool == nil {
		return errors.New("worker pool not configured")
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(gctx, addr)
	})
	if serveWithWorker {
		g.Go(func() error {
			return runBackground(gctx)
		})
	}

	cmd.Printf("API listening on %s\n", addr)
	return g.Wait()
}
