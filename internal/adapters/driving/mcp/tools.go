package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// DocumentInput identifies one document.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the ID of the document"`
}

// SourceOutput is one matched corpus document.
type SourceOutput struct {
	DocumentID      string  `json:"document_id"`
	Name            string  `json:"name"`
	MatchPercent    float64 `json:"match_percent"`
	CitationPercent float64 `json:"citation_percent"`
	Method          string  `json:"method,omitempty"`
}

// VerdictOutput is the output schema for the detect_plagiarism tool.
type VerdictOutput struct {
	DocumentID    string         `json:"document_id"`
	Originality   float64        `json:"originality"`
	Similarity    float64        `json:"similarity"`
	Citations     float64        `json:"citations"`
	RiskLevel     string         `json:"risk_level"`
	IsPlagiarized bool           `json:"is_plagiarized"`
	Message       string         `json:"message"`
	Sources       []SourceOutput `json:"sources"`
}

// SubmitOutput is the output schema for the submit_document tool.
type SubmitOutput struct {
	DocumentID string `json:"document_id"`
	Mode       string `json:"mode"`
	TaskID     string `json:"task_id,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// DocumentOutput is the output schema for the get_document tool.
type DocumentOutput struct {
	DocumentID  string   `json:"document_id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	InCorpus    bool     `json:"in_corpus"`
	Originality *float64 `json:"originality,omitempty"`
	LastError   string   `json:"last_error,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_plagiarism",
		Description: "Analyse a processed document against the reference corpus and return its originality verdict",
	}, s.handleDetect)

	if s.ports.Processing != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "submit_document",
			Description: "Submit a registered document for extraction, vectorization and analysis",
		}, s.handleSubmit)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_document",
			Description: "Show the processing status and score of a document",
		}, s.handleGetDocument)
	}
}

// handleDetect handles the detect_plagiarism tool invocation.
func (s *Server) handleDetect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, VerdictOutput, error) {
	if input.DocumentID == "" {
		return nil, VerdictOutput{}, errors.New("document_id is required")
	}

	v, err := s.ports.Detector.DetectPlagiarism(ctx, input.DocumentID)
	if err != nil {
		return nil, VerdictOutput{}, err
	}

	output := VerdictOutput{
		DocumentID:    v.DocumentID,
		Originality:   v.Originality,
		Similarity:    v.Similarity,
		Citations:     v.Citations,
		RiskLevel:     v.Risk.String(),
		IsPlagiarized: v.IsPlagiarized,
		Message:       v.Message,
		Sources:       make([]SourceOutput, len(v.Sources)),
	}
	for i, src := range v.Sources {
		output.Sources[i] = SourceOutput{
			DocumentID:      src.DocumentID,
			Name:            src.Name,
			MatchPercent:    src.MatchPercent,
			CitationPercent: src.CitationPercent,
			Method:          src.Method,
		}
	}

	return nil, output, nil
}

// handleSubmit handles the submit_document tool invocation.
func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, SubmitOutput, error) {
	res, err := s.ports.Processing.Submit(ctx, input.DocumentID)
	if err != nil {
		return nil, SubmitOutput{}, err
	}
	return nil, SubmitOutput{
		DocumentID: res.DocumentID,
		Mode:       string(res.Mode),
		TaskID:     res.TaskID,
		Status:     res.Status.String(),
		Error:      res.Err,
	}, nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, documentOutput(doc), nil
}

func documentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		DocumentID:  doc.ID,
		Name:        doc.Name,
		Status:      doc.Status.String(),
		InCorpus:    doc.InCorpus,
		Originality: doc.Originality,
		LastError:   doc.LastError,
		UpdatedAt:   doc.UpdatedAt.Format(time.RFC3339),
	}
}
