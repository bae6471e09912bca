package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose plagscan to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run a Model Context Protocol server backed by the local corpus.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants expect when they launch plagscan themselves. With
--port it serves streamable HTTP instead.

Tools:
  detect_plagiarism  analyse a document against the corpus
  submit_document    queue a document for processing
  get_document       show status and score

Resources:
  plagscan://corpus                     corpus documents
  plagscan://report                     aggregate statistics
  plagscan://documents/{id}/text        extracted text

Examples:
  plagscan mcp serve
  plagscan mcp serve --port 8090 --host 0.0.0.0`,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Detector:   detector,
		Processing: processingService,
		Document:   documentService,
		Reports:    reportService,
	})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
