package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pg-onboarding-api/internal/application/upload"
)

// multipart overhead allowed on top of the file itself
const formOverhead = 1 << 20

// UploadHandler serves file uploads backed by S3.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	f, err := h.svc.Upload(r.Context(), upload.Input{
		Reader:   file,
		Filename: header.Filename,
		Size:     header.Size,
		UserID:   userID,
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, "File uploaded successfully", uploadResponse{URL: f.URL, PublicID: f.FileID})
}

func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	files, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, "", files)
}

func (h *UploadHandler) Link(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	url, err := h.svc.Link(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, "", map[string]string{"url": url})
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, "File deleted", nil)
}
