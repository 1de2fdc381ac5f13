package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// apiPrefixes are never answered with the frontend.
var apiPrefixes = []string{"api", "upload", "query", "summarize", "documents", "analytics", "health", "metrics"}

// mountFrontend serves a built single-page app from dir. Assets live under dir/static;
// any other GET path returns the file of that name or index.html.
func (s *Server) mountFrontend(r chi.Router, dir string) {
	assets := http.StripPrefix("/static/", http.FileServer(http.Dir(filepath.Join(dir, "static"))))
	r.Handle("/static/*", assets)

	index := filepath.Join(dir, "index.html")
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		p := strings.TrimPrefix(req.URL.Path, "/")
		if req.Method != http.MethodGet || isAPIPath(p) {
			s.respondError(w, http.StatusNotFound, "Not found")
			return
		}
		if p != "" {
			name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+p)))
			if info, err := os.Stat(name); err == nil && info.Mode().IsRegular() {
				http.ServeFile(w, req, name)
				return
			}
		}
		http.ServeFile(w, req, index)
	})
}

func isAPIPath(p string) bool {
	for _, prefix := range apiPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
