package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/wolfman30/landing-intake/internal/observability/metrics"
	"github.com/wolfman30/landing-intake/pkg/logging"
)

// FormField is the multipart field every file part is sent under.
const FormField = "files"

const multipartMemory = 8 << 20

// FileStorer persists uploaded files.
type FileStorer interface {
	Store(ctx context.Context, files []File) ([]Locator, error)
}

// Handler serves the multipart upload endpoint.
type Handler struct {
	files    FileStorer
	maxBytes int64
	metrics  *metrics.SubmissionMetrics
	logger   *logging.Logger
}

type uploadResponse struct {
	Success bool     `json:"success"`
	IDs     []string `json:"ids"`
	URLs    []string `json:"urls"`
}

// NewHandler creates an upload handler. maxBytes caps the whole request body.
func NewHandler(files FileStorer, maxBytes int64, m *metrics.SubmissionMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		files:    files,
		maxBytes: maxBytes,
		metrics:  m,
		logger:   logger,
	}
}

// Upload handles POST /api/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	status := h.upload(w, r)
	h.metrics.ObserveSubmission("upload", status)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) int {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
		}
		h.logger.Warn("invalid multipart upload", "error", err)
		return writeError(w, http.StatusBadRequest, "Invalid multipart form", err.Error())
	}
	defer r.MultipartForm.RemoveAll()

	files, err := readParts(r.MultipartForm.File[FormField])
	if err != nil {
		h.logger.Error("upload error", "error", err)
		return writeError(w, http.StatusInternalServerError, "Failed to upload files", err.Error())
	}

	start := time.Now()
	locators, err := h.files.Store(r.Context(), files)
	if !errors.Is(err, ErrNoFiles) {
		h.metrics.ObserveExternalCall("storage", "put_objects", err, time.Since(start).Seconds())
	}
	switch {
	case errors.Is(err, ErrNoFiles):
		return writeError(w, http.StatusBadRequest, "No files provided", "")
	case err != nil:
		h.logger.Error("upload error", "error", err)
		return writeError(w, http.StatusInternalServerError, "Failed to upload files", err.Error())
	}

	resp := uploadResponse{Success: true, IDs: make([]string, 0, len(locators)), URLs: make([]string, 0, len(locators))}
	for _, loc := range locators {
		resp.IDs = append(resp.IDs, loc.ID)
		resp.URLs = append(resp.URLs, loc.URL)
	}
	h.metrics.ObserveUploadedFiles(len(locators))
	h.logger.Info("files uploaded", "count", len(locators))
	return writeJSON(w, http.StatusCreated, resp)
}

func readParts(headers []*multipart.FileHeader) ([]File, error) {
	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("intake: open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("intake: read %s: %w", fh.Filename, err)
		}
		files = append(files, File{
			Name:        fh.Filename,
			Data:        data,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return files, nil
}

func writeError(w http.ResponseWriter, status int, msg, details string) int {
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	return writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
	return status
}
