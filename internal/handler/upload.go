package handler

import (
	"net/http"
	"os"
	"path"

	"github.com/go-chi/chi/v5"
)

// ServePhoto handles GET /uploads/{kind}/{file}: it serves stored photo
// evidence back to authenticated clients. The blob resolver rejects
// references with traversal sequences, so only files inside the upload tree
// are reachable.
func (s *Server) ServePhoto(w http.ResponseWriter, r *http.Request) {
	ref := path.Join(chi.URLParam(r, "kind"), chi.URLParam(r, "file"))

	filePath, err := s.blobs.Path(ref)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{errorDetail{"invalid_reference", "invalid photo reference"}})
		return
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{errorDetail{"not_found", "photo not found"}})
		return
	}
	http.ServeFile(w, r, filePath)
}
