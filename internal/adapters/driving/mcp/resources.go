package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

const (
	uriScheme      = "plagscan://"
	corpusURI      = uriScheme + "corpus"
	reportURI      = uriScheme + "report"
	documentPrefix = uriScheme + "documents/"
	textSuffix     = "/text"

	mimeJSON = "application/json"
	mimeText = "text/plain"
)

func (s *Server) registerResources() {
	if s.ports.Document != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         corpusURI,
			Name:        "corpus",
			Description: "Documents in the reference corpus",
			MIMEType:    mimeJSON,
		}, s.handleCorpusResource)

		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: documentPrefix + "{documentId}" + textSuffix,
			Name:        "document-text",
			Description: "Extracted plain text of a document",
			MIMEType:    mimeText,
		}, s.handleDocumentTextResource)
	}

	if s.ports.Reports != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         reportURI,
			Name:        "report",
			Description: "Aggregate originality statistics for every processed document",
			MIMEType:    mimeJSON,
		}, s.handleReportResource)
	}
}

func (s *Server) handleCorpusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx, domain.DocumentFilter{CorpusOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing corpus: %w", err)
	}

	out := make([]DocumentOutput, len(docs))
	for i := range docs {
		out[i] = documentOutput(&docs[i])
	}
	return jsonContents(req.Params.URI, out)
}

func (s *Server) handleReportResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Reports.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}
	return jsonContents(req.Params.URI, report)
}

func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := documentIDFromURI(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Document.GetText(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting document text: %w", err)
	}
	return textContents(req.Params.URI, mimeText, text), nil
}

// jsonContents renders v as indented JSON under uri.
func jsonContents(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return textContents(uri, mimeJSON, string(data)), nil
}

func textContents(uri, mime, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mime, Text: text}},
	}
}

// documentIDFromURI returns the id in plagscan://documents/{id}/text,
// or "" for any other shape.
func documentIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, documentPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, textSuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
