package httpapi

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/storage"
)

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}

	path, info, err := s.files.Resolve(name)
	switch {
	case errors.Is(err, storage.ErrOutsideDir):
		s.logger.WarnCtx(r.Context(), "rejected file request outside download directory",
			logger.Field{Key: "name", Value: name})
		writeError(w, http.StatusForbidden, "access denied")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "file not found")
		return
	case err != nil:
		s.logger.ErrorCtx(r.Context(), "failed to resolve file", err, logger.Field{Key: "name", Value: name})
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		// removed by the cleanup loop between stat and open
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		s.logger.ErrorCtx(r.Context(), "failed to open file", err, logger.Field{Key: "path", Value: path})
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": info.Name()}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
