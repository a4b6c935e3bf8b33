package httpapi

import (
	"io"
	"net/http"
)

const maxUploadSize = 15 << 20

type enhanceResponse struct {
	Success  bool   `json:"success"`
	ImageKey string `json:"imageKey"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// enhanceImage accepts a multipart upload, runs the model, and stores the
// result. The key in the response is what checkout and download operate on;
// the URL is a short-lived preview.
func (h *Handler) enhanceImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading file")
		return
	}

	result, err := h.enhancer.Enhance(r.Context(), data, header.Header.Get("Content-Type"), r.FormValue("prompt"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	contentType := result.MIMEType
	if contentType == "" {
		contentType = "image/png"
	}

	key, err := h.blobs.Upload(r.Context(), result.Data, contentType)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	url, err := h.blobs.PresignGet(r.Context(), key)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, enhanceResponse{
		Success:  true,
		ImageKey: key,
		ImageURL: url,
		Message:  "Image processed and uploaded successfully",
	})
}
