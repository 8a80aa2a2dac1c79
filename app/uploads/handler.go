package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tabrima/storefront/app/api"
)

const (
	FormField = "image"
	// URLPrefix is where the uploads directory is reachable over HTTP.
	URLPrefix = "/uploads/"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var ErrNotAnImage = errors.New("only image files are allowed")

type UploadResponse struct {
	URL string `json:"url"`
}

type Handler struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

func NewHandler(dir string, maxBytes int64, logger *slog.Logger) *Handler {
	return &Handler{dir: dir, maxBytes: maxBytes, logger: logger}
}

// HandleUpload stores the multipart "image" file under a random name and
// answers with its public URL.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	tooLargeMsg := fmt.Sprintf("Image exceeds %d KB", h.maxBytes>>10)
	if r.ContentLength > h.maxBytes {
		api.ErrorResponse(w, http.StatusRequestEntityTooLarge, tooLargeMsg)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile(FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			api.ErrorResponse(w, http.StatusRequestEntityTooLarge, tooLargeMsg)
		case errors.Is(err, http.ErrMissingFile):
			api.ErrorResponse(w, http.StatusBadRequest, "Missing image file")
		default:
			api.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart body")
		}
		return
	}
	defer file.Close()

	name, err := h.save(file, header.Filename)
	if err != nil {
		if errors.Is(err, ErrNotAnImage) {
			api.ErrorResponse(w, http.StatusBadRequest, "Only image files are allowed")
			return
		}
		h.logger.ErrorContext(r.Context(), "store upload", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	h.logger.InfoContext(r.Context(), "image uploaded", "file", name, "size", header.Size)
	api.CreatedResponse(w, UploadResponse{URL: URLPrefix + name})
}

func (h *Handler) save(src io.ReadSeeker, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrNotAnImage
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", ErrNotAnImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(h.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return name, nil
}
