// Package mcp provides an MCP (Model Context Protocol) server adapter for plagscan.
// It lets AI assistants run plagiarism checks and submit documents for processing.
package mcp

import "errors"

// ErrMissingDetector is returned when the detector is not provided.
var ErrMissingDetector = errors.New("mcp: detector is required")
