package frontend

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed all:dist
var dist embed.FS

// ErrNotBuilt is returned when the console bundle is missing from the binary
var ErrNotBuilt = goerr.New("console is not built")

// GetHTTPFS returns the embedded console build. A binary compiled without
// running the frontend build only carries dist/.gitkeep and gets ErrNotBuilt.
func GetHTTPFS() (http.FileSystem, error) {
	root, err := fs.Sub(dist, "dist")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open embedded dist")
	}

	info, err := fs.Stat(root, "index.html")
	if err != nil || info.IsDir() {
		return nil, goerr.Wrap(ErrNotBuilt, "index.html not found in embedded dist")
	}

	return http.FS(root), nil
}
