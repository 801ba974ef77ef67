package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/erazemk/bodega/internal/annotations"
)

// AnnotationsHandler serves per-photo annotation documents.
type AnnotationsHandler struct {
	Store *annotations.Store
}

type saveAnnotationRequest struct {
	PhotoID     string          `json:"fotoId"`
	Annotations json.RawMessage `json:"anotaciones"`
}

// Save handles POST /api/save-annotation.
func (h *AnnotationsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveAnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhotoID == "" || len(req.Annotations) == 0 {
		jsonError(w, http.StatusBadRequest, "fotoId and anotaciones required")
		return
	}

	if err := h.Store.Save(req.PhotoID, req.Annotations); err != nil {
		slog.Error("saving annotation", "photo_id", req.PhotoID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save annotation")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// Get handles GET /api/annotations/{fotoId}.
func (h *AnnotationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.Store.Load(r.PathValue("fotoId"))
	if errors.Is(err, os.ErrNotExist) {
		jsonError(w, http.StatusNotFound, "no annotations for photo")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
