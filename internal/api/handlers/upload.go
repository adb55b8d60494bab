package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/storage"
)

const (
	maxUploadBytes = 20 << 20
	maxUploadFiles = 5
)

type UploadHandler struct {
	Store storage.ImageStore
}

func NewUploadHandler(store storage.ImageStore) *UploadHandler {
	return &UploadHandler{Store: store}
}

var imageExtByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload stores book cover photos and returns their public URLs. The
// form field is "images"; a single "image" part is accepted too.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_upload", "payload too large or malformed form", nil)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		files = r.MultipartForm.File["image"]
	}
	if len(files) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_upload", "images field is required", nil)
		return
	}
	if len(files) > maxUploadFiles {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_upload",
			fmt.Sprintf("at most %d images per upload", maxUploadFiles), nil)
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.storeOne(r, fh)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_upload", err.Error(), nil)
			return
		}
		urls = append(urls, url)
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]interface{}{"urls": urls})
}

func (h *UploadHandler) storeOne(r *http.Request, fh *multipart.FileHeader) (string, error) {
	ct := fh.Header.Get("Content-Type")
	ext, ok := imageExtByType[ct]
	if !ok {
		// fall back to the filename when the part carries no content type
		ext = strings.ToLower(filepath.Ext(fh.Filename))
		switch ext {
		case ".jpg", ".jpeg":
			ct, ext = "image/jpeg", ".jpg"
		case ".png":
			ct = "image/png"
		case ".webp":
			ct = "image/webp"
		default:
			return "", fmt.Errorf("%s: only jpeg, png and webp images are accepted", fh.Filename)
		}
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%s: unreadable part", fh.Filename)
	}
	defer f.Close()

	key := fmt.Sprintf("books/%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
	url, err := h.Store.Put(r.Context(), key, ct, f)
	if err != nil {
		return "", fmt.Errorf("%s: could not store image", fh.Filename)
	}
	return url, nil
}
