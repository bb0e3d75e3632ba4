package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/ocr"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pdf"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/preprocess"
)

var pdfMagic = []byte("%PDF-")

// ocrUpload is a decoded upload, regardless of how it arrived.
type ocrUpload struct {
	data         []byte
	filename     string
	documentType string
	pages        string
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	upload, err := s.readUpload(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	uploadSize.Observe(float64(len(upload.data)))

	opts := pipeline.Options{DocumentType: upload.documentType}

	ctx := r.Context()
	if s.cfg.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSec)*time.Second)
		defer cancel()
	}

	store := queryBool(r, "store")
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "text" {
		writeError(w, http.StatusBadRequest, "unsupported format: "+format)
		return
	}

	if isPDFUpload(upload) {
		s.processPDFUpload(ctx, w, upload, opts, format, store, start)
		return
	}

	res, err := s.pipeline.ProcessBytesContext(ctx, upload.data, opts)
	duration := time.Since(start)
	if err != nil {
		ocrRequests.WithLabelValues("image", "error").Inc()
		writeError(w, errorStatus(err), err.Error())
		return
	}
	ocrRequests.WithLabelValues("image", "success").Inc()
	ocrDuration.Observe(duration.Seconds())
	ocrTextLength.Observe(float64(len(res.RawText)))
	ocrEntities.Observe(float64(len(res.Entities)))

	resp := OCRResponse{Result: res}
	if store {
		doc, err := s.store.Save(upload.filename, res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.ID = doc.ID.String()
	}

	if format == "text" {
		text, err := pipeline.ToPlainText(res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writePlainText(w, text)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) processPDFUpload(ctx context.Context, w http.ResponseWriter, upload *ocrUpload, opts pipeline.Options, format string, store bool, start time.Time) {
	tmp, err := os.CreateTemp("", "medocr-upload-*.pdf")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to buffer upload: "+err.Error())
		return
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(upload.data); err != nil {
		_ = tmp.Close()
		writeError(w, http.StatusInternalServerError, "failed to buffer upload: "+err.Error())
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to buffer upload: "+err.Error())
		return
	}

	res, err := s.pipeline.ProcessPDFContext(ctx, tmp.Name(), upload.pages, opts)
	duration := time.Since(start)
	if err != nil {
		ocrRequests.WithLabelValues("pdf", "error").Inc()
		writeError(w, errorStatus(err), err.Error())
		return
	}
	// Responses carry the name the client sent, not the buffer path.
	res.Filename = upload.filename
	ocrRequests.WithLabelValues("pdf", "success").Inc()
	ocrDuration.Observe(duration.Seconds())

	resp := PDFResponse{Result: res}
	if store {
		for _, page := range res.Pages {
			for _, pageRes := range page.Results {
				name := fmt.Sprintf("%s#page-%d", upload.filename, page.PageNumber)
				doc, err := s.store.Save(name, pageRes)
				if err != nil {
					writeError(w, http.StatusInternalServerError, err.Error())
					return
				}
				resp.IDs = append(resp.IDs, doc.ID.String())
			}
		}
	}

	if format == "text" {
		writePlainText(w, pdfPlainText(res))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload accepts either a multipart form with the file in a "document"
// (or legacy "image") field, or a JSON body with a base64-encoded image.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*ocrUpload, error) {
	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "application/json" {
		return readJSONUpload(r)
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("failed to parse upload: %w", err)
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		file, header, err = r.FormFile("image")
	}
	if err != nil {
		return nil, errors.New("no file provided in 'document' field")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded file is empty")
	}

	return &ocrUpload{
		data:         data,
		filename:     filepath.Base(header.Filename),
		documentType: r.FormValue("document_type"),
		pages:        r.FormValue("pages"),
	}, nil
}

func readJSONUpload(r *http.Request) (*ocrUpload, error) {
	var req OCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return readJSONUploadRequest(req)
}

func readJSONUploadRequest(req OCRRequest) (*ocrUpload, error) {
	if req.Image == "" {
		return nil, errors.New("missing 'image' field")
	}

	// Browsers send canvas captures as data URLs.
	encoded := req.Image
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("decoded image is empty")
	}

	filename := req.Filename
	if filename == "" {
		filename = "upload"
	}
	return &ocrUpload{
		data:         data,
		filename:     filepath.Base(filename),
		documentType: req.DocumentType,
		pages:        req.Pages,
	}, nil
}

func isPDFUpload(upload *ocrUpload) bool {
	if strings.EqualFold(filepath.Ext(upload.filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(upload.data, pdfMagic)
}

// errorStatus maps processing failures onto HTTP statuses. Degraded but
// usable results never reach here; they are returned with a 200.
func errorStatus(err error) int {
	var formatErr *preprocess.UnsupportedFormatError
	if errors.As(err, &formatErr) {
		return http.StatusUnsupportedMediaType
	}
	var extractErr *ocr.ExtractionError
	if errors.As(err, &extractErr) {
		return http.StatusUnprocessableEntity
	}
	if pdf.IsPasswordError(err) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func pdfPlainText(res *pipeline.PDFResult) string {
	var sb strings.Builder
	for i, page := range res.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "=== Page %d ===\n", page.PageNumber)
		for j, pageRes := range page.Results {
			if j > 0 {
				sb.WriteString("\n")
			}
			text, err := pipeline.ToPlainText(pageRes)
			if err != nil {
				slog.Warn("Failed to render page text", "page", page.PageNumber, "error", err)
				continue
			}
			sb.WriteString(text)
		}
	}
	return sb.String()
}

func writePlainText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func queryBool(r *http.Request, key string) bool {
	val, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && val
}
