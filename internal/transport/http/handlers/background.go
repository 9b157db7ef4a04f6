package handlers

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/response"
)

// maxUploadSize — предел размера загружаемого изображения.
const maxUploadSize = 10 << 20 // 10 MiB

// BackgroundRemove — POST /ai/background-remove.
// Принимает multipart-поле image (только image/*, до 10 MiB),
// проксирует в remove.bg и отвечает PNG-байтами без сохранения на сервере.
func (h *Handlers) BackgroundRemove(w http.ResponseWriter, r *http.Request) {
	if h.bg == nil {
		response.JSON(w, http.StatusInternalServerError, response.Envelope{
			Success: false,
			Message: "Remove.bg API key is not configured",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "image", Message: "No image file provided"},
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "image", Message: "No image file provided"},
		})
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "image", Message: "Only image files are allowed"},
		})
		return
	}

	result, err := h.bg.RemoveBackground(r.Context(), file, header.Filename)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}
