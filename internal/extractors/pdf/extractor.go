// Package pdf extracts text from PDF files through poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const tool = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF files.
type Extractor struct {
	runner   CommandRunner
	lookPath func(file string) (string, error)
}

// New creates an extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}, lookPath: exec.LookPath}
}

// NewWithRunner creates an extractor with a custom runner. The runner is
// trusted to provide pdftotext, so no PATH lookup is made.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{
		runner:   runner,
		lookPath: func(file string) (string, error) { return file, nil },
	}
}

// CheckAvailable reports ErrPDFToolNotFound when pdftotext is missing.
func CheckAvailable() error {
	if _, err := exec.LookPath(tool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to get pdftotext.
func InstallInstructions() string {
	return `pdftotext is part of poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract runs pdftotext on path and cleans the result.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := e.lookPath(tool); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, ErrPDFToolNotFound)
	}

	out, err := e.runner.Run(ctx, tool, "-enc", "UTF-8", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext failed: %w", domain.ErrExtraction, err)
	}

	text := Clean(string(out))
	if text == "" {
		return "", fmt.Errorf("%w: no text layer in %s", domain.ErrExtraction, path)
	}
	return text, nil
}

var (
	tableRow    = regexp.MustCompile(`^\|.*\|$`)
	tableBorder = regexp.MustCompile(`^[-|+=]+$`)
	pageNumber  = regexp.MustCompile(`^\d{1,4}$`)
	dotLeader   = regexp.MustCompile(`\.{3,}\s*\d+$`)
	spaces      = regexp.MustCompile(`[ \t]+`)
)

// skippedPages are title and contents pages, matched on their first line.
var skippedPages = []string{"СОДЕРЖАНИЕ", "МИНИСТЕРСТВО ОБРАЗОВАНИЯ", "CONTENTS", "TABLE OF CONTENTS"}

// Clean drops contents pages, table rows, page numbers and dot-leader
// lines, then joins each paragraph onto one line.
func Clean(raw string) string {
	raw = strings.ToValidUTF8(raw, "\ufffd")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var paragraphs []string
	for _, page := range strings.Split(raw, "\f") {
		if skipPage(page) {
			continue
		}

		var para []string
		flush := func() {
			if len(para) > 0 {
				paragraphs = append(paragraphs, strings.Join(para, " "))
				para = para[:0]
			}
		}
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
			switch {
			case line == "":
				flush()
			case tableRow.MatchString(line), tableBorder.MatchString(line),
				pageNumber.MatchString(line), dotLeader.MatchString(line):
			default:
				para = append(para, line)
			}
		}
		flush()
	}
	return strings.Join(paragraphs, "\n\n")
}

func skipPage(page string) bool {
	for _, line := range strings.Split(page, "\n") {
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		for _, prefix := range skippedPages {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
		return false
	}
	return false
}
