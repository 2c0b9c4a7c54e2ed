package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/m-mizutani/gt"
	ctrlhttp "github.com/secmon-lab/ascent/pkg/controller/http"
)

func TestSPAHandler(t *testing.T) {
	fsys := http.FS(fstest.MapFS{
		"index.html":           {Data: []byte(`<html><div id="root"></div></html>`)},
		"assets/style.css":     {Data: []byte(`body { margin: 0 }`)},
		"templates/cohort.csv": {Data: []byte("candidate_id,name\n")},
	})
	handler, err := ctrlhttp.NewSPAHandler(fsys)
	gt.NoError(t, err).Required()

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("static file", func(t *testing.T) {
		w := serve("/assets/style.css")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, w.Header().Get("Content-Type"), "text/css; charset=utf-8")
		gt.S(t, w.Body.String()).Contains("margin")
	})

	t.Run("non asset file is not cached long", func(t *testing.T) {
		w := serve("/templates/cohort.csv")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, w.Header().Get("Cache-Control"), "")
	})

	t.Run("client routes", func(t *testing.T) {
		for _, path := range []string{"/", "/cohorts", "/cohorts/abc/efforts", "/feedback/token", "/assets"} {
			w := serve(path)
			gt.Equal(t, w.Code, http.StatusOK)
			gt.Equal(t, w.Header().Get("Content-Type"), "text/html; charset=utf-8")
			gt.S(t, w.Body.String()).Contains(`<div id="root">`)
		}
	})

	t.Run("traversal stays inside the build", func(t *testing.T) {
		w := serve("/../../etc/passwd")
		gt.Equal(t, w.Code, http.StatusOK)
		gt.S(t, w.Body.String()).Contains(`<div id="root">`)
	})

	t.Run("index is required", func(t *testing.T) {
		_, err := ctrlhttp.NewSPAHandler(http.FS(fstest.MapFS{}))
		gt.Error(t, err)
	})
}
