package durable

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/dzlab/edgesearch/internal/apperr"
)

// Handler exposes an Actor over HTTP, mirroring the durable object's own
// fetch handler: POST /keywords or POST /documents with a comma-separated
// key list as the body, a framed byte stream back.
type Handler struct {
	Actor *Actor
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var path Path
	switch r.URL.Path {
	case string(PathKeywords):
		path = PathKeywords
	case string(PathDocuments):
		path = PathDocuments
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resp, err := h.Actor.Invoke(r.Context(), path, body)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("durable: invoke %s failed: %v", path, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(resp); err != nil {
		log.Printf("durable: write response for %s: %v", path, err)
	}
}
