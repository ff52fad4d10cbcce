package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/blob"
	"github.com/sammiepius/homelink-backend/internal/config"
	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/services"
	"github.com/sammiepius/homelink-backend/validation"
)

const (
	imagesField = "images"
	maxMemory   = 32 << 20
	formSlack   = 1 << 20
)

// UploadHandler stores batches of listing images in the blob store.
type UploadHandler struct {
	blobs blob.Store
	limit config.UploadConfig
	log   *zap.Logger
}

func NewUploadHandler(blobs blob.Store, limit config.UploadConfig, log *zap.Logger) *UploadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadHandler{blobs: blobs, limit: limit, log: log}
}

// validate checks count, size and content type of every part.
func (h *UploadHandler) validate(files []*multipart.FileHeader) error {
	v := make(validation.Violations)
	switch {
	case len(files) == 0:
		v[imagesField] = "required"
	case len(files) > h.limit.MaxFiles:
		v[imagesField] = "too_many_files"
	}
	for i, fh := range files {
		if code := imageViolation(fh, h.limit); code != "" {
			v[fmt.Sprintf("%s[%d]", imagesField, i)] = code
		}
	}
	if v.Empty() {
		return nil
	}
	return services.Invalid(v)
}

// imageViolation returns the violation code for a part that is not an
// acceptable image, or "" when it is.
func imageViolation(fh *multipart.FileHeader, limit config.UploadConfig) string {
	if fh.Size > limit.MaxFileBytes {
		return "too_large"
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "invalid_type"
	}
	return ""
}

// Upload accepts up to MaxFiles images in the "images" field and returns
// their URLs in input order.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.limit.MaxFiles+1)*h.limit.MaxFileBytes+formSlack)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "No images uploaded", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[imagesField]
	if err := h.validate(files); err != nil {
		httpx.Error(w, err)
		return
	}

	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(r.Context())
	for i, fh := range files {
		g.Go(func() error {
			path, err := spool(fh)
			if err != nil {
				return err
			}
			defer os.Remove(path)

			url, err := h.blobs.Upload(ctx, path)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log := logger.WithContext(r.Context(), h.log)
		log.Error("image upload failed", zap.Int("files", len(files)), zap.Error(err))
		cleanup := context.WithoutCancel(r.Context())
		for _, url := range urls {
			if url == "" {
				continue
			}
			if err := h.blobs.Delete(cleanup, url); err != nil {
				log.Warn("delete partial upload", zap.String("url", url), zap.Error(err))
			}
		}
		httpx.JSONError(w, http.StatusInternalServerError, "Image upload failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string][]string{"urls": urls})
}
