package mcp

import (
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
)

// Ports holds the services the MCP server dispatches to.
// Only Detector is required; tools and resources backed by a nil
// service are not registered.
type Ports struct {
	Detector   driving.Detector
	Processing driving.ProcessingService
	Document   driving.DocumentService
	Reports    driving.ReportService
}

// Validate reports ErrMissingDetector when no detector is set.
func (p *Ports) Validate() error {
	if p.Detector == nil {
		return ErrMissingDetector
	}
	return nil
}
