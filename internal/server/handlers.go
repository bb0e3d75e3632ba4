package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/document"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:     s.store.Stats(),
		UptimeSec: int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter := document.Filter{
		Type:  r.URL.Query().Get("type"),
		Query: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	docs := s.store.List(filter)
	resp := DocumentsResponse{
		Documents: make([]DocumentSummary, 0, len(docs)),
		Count:     len(docs),
	}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, summarize(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDocumentID(w, r)
	if !ok {
		return
	}
	doc, err := s.store.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDocumentID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDocumentID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		data, err := s.store.ExportJSON(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "txt", "text":
		text, err := s.store.ExportText(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format: "+format)
	}
}

func parseDocumentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}

func summarize(doc *document.Document) DocumentSummary {
	sum := DocumentSummary{
		ID:        doc.ID.String(),
		Filename:  doc.Filename,
		CreatedAt: doc.CreatedAt.Format(time.RFC3339),
	}
	if doc.Result != nil {
		sum.DocumentType = doc.Result.DocumentType
		sum.Entities = len(doc.Result.Entities)
	}
	return sum
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, document.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
