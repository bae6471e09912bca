package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
	Long:  `Commands for registering and inspecting documents and corpus membership.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Register a document",
	Long: `Register an uploaded file as a document. The document starts in the
queued state; use "plagscan submit" to process it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [document-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentTextCmd = &cobra.Command{
	Use:   "text [document-id]",
	Short: "Print the extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentText,
}

var documentCorpusCmd = &cobra.Command{
	Use:   "corpus [document-id]",
	Short: "Change corpus membership",
	Long: `Add a document to, or remove it from, the reference corpus.
Corpus members are used as comparison sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentCorpus,
}

var (
	addName    string
	addCorpus  bool
	listStatus string
	listCorpus bool
	listLimit  int
	corpusOn   bool
	corpusOff  bool
)

func init() {
	documentAddCmd.Flags().StringVar(&addName, "name", "", "display name (defaults to the file name)")
	documentAddCmd.Flags().BoolVar(&addCorpus, "corpus", false, "add the document to the reference corpus")

	documentListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (queued, processing, completed, failed)")
	documentListCmd.Flags().BoolVar(&listCorpus, "corpus", false, "only corpus members")
	documentListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of documents (0 = all)")

	documentCorpusCmd.Flags().BoolVar(&corpusOn, "on", false, "add to the corpus")
	documentCorpusCmd.Flags().BoolVar(&corpusOff, "off", false, "remove from the corpus")
	documentCorpusCmd.MarkFlagsMutuallyExclusive("on", "off")
	documentCorpusCmd.MarkFlagsOneRequired("on", "off")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentTextCmd)
	documentCmd.AddCommand(documentCorpusCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	doc, err := documentService.Register(cmd.Context(), path, addName, addCorpus)
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	cmd.Printf("Registered document: %s\n", doc.ID)
	if doc.InCorpus {
		cmd.Println("  Added to corpus")
	}
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), domain.DocumentFilter{
		Status:     domain.ProcessingStatus(listStatus),
		CorpusOnly: listCorpus,
		Limit:      listLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		corpus := ""
		if docs[i].InCorpus {
			corpus = " [corpus]"
		}
		cmd.Printf("  %s  %-10s %s  %s%s\n", docs[i].ID, docs[i].Status, formatScore(docs[i].Originality), docs[i].Name, corpus)
	}

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:        %s\n", doc.Name)
	cmd.Printf("  File:        %s\n", doc.FilePath)
	cmd.Printf("  Status:      %s\n", doc.Status)
	cmd.Printf("  Corpus:      %t\n", doc.InCorpus)
	cmd.Printf("  Originality: %s\n", formatScore(doc.Originality))
	if doc.Verdict != nil {
		cmd.Printf("  Risk:        %s\n", doc.Verdict.Risk)
		cmd.Printf("  Citations:   %.2f%%\n", doc.Verdict.Citations)
	}
	if doc.LastError != "" {
		cmd.Printf("  Error:       %s\n", doc.LastError)
	}
	cmd.Printf("  Created:     %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:     %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.CompletedAt != nil {
		cmd.Printf("  Completed:   %s\n", doc.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runDocumentText(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	text, err := documentService.GetText(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document text: %w", err)
	}

	cmd.Println(text)
	return nil
}

func runDocumentCorpus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.SetCorpus(cmd.Context(), args[0], corpusOn); err != nil {
		return fmt.Errorf("failed to update corpus membership: %w", err)
	}

	if corpusOn {
		cmd.Printf("Added to corpus: %s\n", args[0])
	} else {
		cmd.Printf("Removed from corpus: %s\n", args[0])
	}
	return nil
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *score)
}
