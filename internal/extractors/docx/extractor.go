// Package docx extracts paragraph and table text from Word (.docx) files.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// TablesHeader separates table rows from body paragraphs.
const TablesHeader = "[TABLES]"

const documentPart = "word/document.xml"

// Extractor handles DOCX files.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract returns non-empty paragraphs one per line, followed by table
// rows with cells joined by " | ".
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening docx: %w", domain.ErrExtraction, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		defer rc.Close()

		text, err := Parse(rc)
		if err != nil {
			return "", fmt.Errorf("%w: parsing %s: %w", domain.ErrExtraction, documentPart, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: %s not found", domain.ErrExtraction, documentPart)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type paragraph struct {
	Runs       []run `xml:"r"`
	Hyperlinks []struct {
		Runs []run `xml:"r"`
	} `xml:"hyperlink"`
}

type run struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

func (p paragraph) text() string {
	var b strings.Builder
	write := func(runs []run) {
		for _, r := range runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
	}
	write(p.Runs)
	for _, h := range p.Hyperlinks {
		write(h.Runs)
	}
	return strings.TrimSpace(b.String())
}

// Parse reads word/document.xml content.
func Parse(r io.Reader) (string, error) {
	var doc documentXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return "", err
	}

	var paras []string
	for _, p := range doc.Body.Paragraphs {
		if text := p.text(); text != "" {
			paras = append(paras, text)
		}
	}

	var rows []string
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var parts []string
				for _, p := range cell.Paragraphs {
					if text := p.text(); text != "" {
						parts = append(parts, text)
					}
				}
				if len(parts) > 0 {
					cells = append(cells, strings.Join(parts, "\n"))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
		}
	}

	text := strings.Join(paras, "\n")
	if len(rows) > 0 {
		text += "\n\n" + TablesHeader + "\n" + strings.Join(rows, "\n")
	}
	return text, nil
}
