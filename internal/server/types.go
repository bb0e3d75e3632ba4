// Package server exposes the document processing chain over HTTP: an OCR
// endpoint, a document store API, statistics, Prometheus metrics, and a
// WebSocket channel with live progress.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/config"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/document"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

// processor is the slice of the pipeline the server needs. Tests substitute
// a scripted implementation.
type processor interface {
	ProcessBytesContext(ctx context.Context, data []byte, opts pipeline.Options) (*pipeline.StructuredResult, error)
	ProcessPDFContext(ctx context.Context, filename, pageRange string, opts pipeline.Options) (*pipeline.PDFResult, error)
	ProcessText(text string, opts pipeline.Options) (*pipeline.StructuredResult, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline processor
	store    *document.Store
	cfg      config.ServerConfig
	limiter  *rateLimiter
	version  string
	started  time.Time
}

// New creates a server around an already built pipeline.
func New(p processor, cfg config.ServerConfig, version string) *Server {
	s := &Server{
		pipeline: p,
		store:    document.NewStore(cfg.StoreLimit),
		cfg:      cfg,
		version:  version,
		started:  time.Now(),
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return s
}

// Store exposes the document store, mainly for tests and the serve command.
func (s *Server) Store() *document.Store {
	return s.store
}

// Handler builds the route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /ocr", s.rateLimit(s.handleOCR))
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /documents/{id}/export", s.handleExportDocument)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("GET /metrics", metricsHandler())

	return s.withCORS(s.withObservability(mux))
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// OCRRequest is the JSON alternative to a multipart upload.
type OCRRequest struct {
	// Image is the base64-encoded document image or PDF.
	Image string `json:"image"`

	Filename     string `json:"filename,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	Pages        string `json:"pages,omitempty"`
}

// OCRResponse wraps a processing result, with the stored document ID when
// persistence was requested.
type OCRResponse struct {
	ID     string                     `json:"id,omitempty"`
	Result *pipeline.StructuredResult `json:"result"`
}

// PDFResponse wraps a per-page PDF result.
type PDFResponse struct {
	IDs    []string            `json:"ids,omitempty"`
	Result *pipeline.PDFResult `json:"result"`
}

// DocumentSummary is one row of the GET /documents listing.
type DocumentSummary struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	DocumentType string `json:"document_type"`
	Entities     int    `json:"entities"`
	CreatedAt    string `json:"created_at"`
}

// DocumentsResponse is the GET /documents body.
type DocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// StatsResponse is the GET /stats body.
type StatsResponse struct {
	document.Stats
	UptimeSec int64 `json:"uptime_sec"`
}

// ErrorResponse is the JSON error body for every failure status.
type ErrorResponse struct {
	Error string `json:"error"`
}
