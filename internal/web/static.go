package web

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pulse/internal/images"
)

// staticHandler serves uploaded pictures from the image store and everything else from the embedded assets.
type staticHandler struct {
	store   images.Store
	uploads string
	assets  http.Handler
	logger  *log.Logger
}

func newStaticHandler(store images.Store, uploadsURL string, logger *log.Logger) *staticHandler {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return &staticHandler{
		store:   store,
		uploads: strings.TrimSuffix(uploadsURL, "/") + "/",
		assets:  http.StripPrefix("/static/", http.FileServerFS(assets)),
		logger:  logger,
	}
}

func (h *staticHandler) Routes() []string {
	return []string{"GET /static/"}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutPrefix(r.URL.Path, h.uploads)
	if !ok {
		h.assets.ServeHTTP(w, r)
		return
	}

	if err := images.ValidateName(name); err != nil {
		http.NotFound(w, r)
		return
	}

	data, err := h.store.Read(r.Context(), name)
	if errors.Is(err, images.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to read upload", "name", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}
