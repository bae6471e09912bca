// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Detection (DetectorService) is read-only: it never writes to the
// document store. Processing (PipelineService, ProcessingService,
// WorkerPool) owns every status transition of a document.
package services
