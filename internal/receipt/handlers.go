package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-reader/internal/extract"
	"github.com/zombor/receipt-reader/internal/scanning"
)

const (
	// maxDocumentSize bounds fragment documents posted to /api/extract
	maxDocumentSize = int64(10 << 20)
	// maxUploadSize handles high-resolution phone photos
	maxUploadSize = int64(50 << 20)
)

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error response with CORS headers set
func writeError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, map[string]string{"error": message}, code)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, extract.ErrContractViolation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoScanner):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleOptions returns the extraction options the server runs with
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts := s.service.Options()
	writeJSON(w, map[string]string{
		"total_search":    opts.TotalSearch.String(),
		"date_search":     opts.DateSearch.String(),
		"products_search": opts.ProductsSearch.String(),
		"orientation":     opts.Orientation.String(),
		"price_editing":   opts.PriceEditing.String(),
		"locale":          opts.Locale.String(),
		"scheme":          extract.SchemeFor(opts.Locale).Code,
	}, http.StatusOK)
}

// handleExtract analyzes a posted fragment document
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		slog.Error("Error reading request body", "error", err)
		writeError(w, "Error reading request body", http.StatusBadRequest)
		return
	}

	set, err := scanning.DecodeFragments(body)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := s.service.Extract(*set)
	if err != nil {
		slog.Error("Error extracting receipt", "fragments", len(set.Fragments), "error", err)
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, receipt, http.StatusOK)
}

// handleScan recognizes and analyzes an uploaded receipt image
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := uploadContentType(header.Header.Get("Content-Type"), header.Filename)

	receipt, err := s.service.Scan(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error scanning receipt", "filename", header.Filename, "error", err)
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, receipt, http.StatusOK)
}

// uploadContentType falls back to the file extension when the part has no
// content type
func uploadContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
