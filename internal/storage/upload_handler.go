package storage

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/api"
)

// Error codes for upload responses
const (
	CodeStorageDisabled = "STORAGE_DISABLED"
)

// allowedImageTypes maps accepted content types to their object key extension
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadRequest represents the image upload request payload
type UploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the pre-signed upload response
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ExpiresIn int64  `json:"expires_in"`
}

// UploadHandler handles pre-signed image upload requests
type UploadHandler struct {
	storageService *StorageService
}

// NewUploadHandler creates a new UploadHandler instance
func NewUploadHandler(storageService *StorageService) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
	}
}

// PresignImageUpload issues a pre-signed PUT URL for an image upload
// POST /api/v1/uploads/images
func (h *UploadHandler) PresignImageUpload(w http.ResponseWriter, r *http.Request) {
	if !h.storageService.Enabled() {
		api.WriteError(w, http.StatusServiceUnavailable, CodeStorageDisabled, "Image storage is not configured", nil)
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Unsupported image content type", nil)
		return
	}

	// Key derives from a fresh UUID, the client file name is only used for
	// a friendlier suffix if present
	key := "images/" + uuid.New().String()
	if base := sanitizeFileName(req.FileName); base != "" {
		key += "-" + base
	}
	key += ext

	uploadURL, expiry, err := h.storageService.PresignUpload(r.Context(), key, contentType)
	if err != nil {
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, UploadResponse{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresIn: int64(expiry.Seconds()),
	})
}

// sanitizeFileName reduces a client file name to a safe lowercase slug
// without its extension
func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ToLower(base)

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// RegisterRoutes registers upload routes with the Chi router
func RegisterRoutes(r chi.Router, handler *UploadHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/uploads", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/images", handler.PresignImageUpload)
	})
}
