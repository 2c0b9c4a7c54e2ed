package http

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// SPAHandler serves the console build. Unknown paths fall back to index.html
// so that client side routes such as /feedback/{token} resolve.
type SPAHandler struct {
	root  http.FileSystem
	index []byte
}

// NewSPAHandler loads index.html from root and serves the rest on demand
func NewSPAHandler(root http.FileSystem) (*SPAHandler, error) {
	index, err := readIndex(root)
	if err != nil {
		return nil, goerr.Wrap(err, "console bundle has no usable index.html")
	}
	return &SPAHandler{root: root, index: index}, nil
}

func readIndex(root http.FileSystem) ([]byte, error) {
	f, err := root.Open("/index.html")
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// ServeHTTP implements http.Handler
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleanPath := path.Clean("/" + r.URL.Path)
	if cleanPath == "/" || cleanPath == "/index.html" {
		h.serveIndex(w, r)
		return
	}

	f, err := h.root.Open(cleanPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		h.serveIndex(w, r)
		return
	case err != nil:
		ctxlog.From(r.Context()).Error("Failed to open console asset", "error", err, "path", cleanPath)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		h.serveIndex(w, r)
		return
	}

	if ct, ok := mimeTypes[path.Ext(cleanPath)]; ok {
		w.Header().Set("Content-Type", ct)
	}
	// Bundled assets carry a content hash in their name
	if strings.HasPrefix(cleanPath, "/assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(h.index); err != nil {
		ctxlog.From(r.Context()).Warn("Failed to write index.html", "error", err)
	}
}

var mimeTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".csv":   "text/csv; charset=utf-8",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
}
