package webapi

import (
	"net/http"

	"github.com/go-pkgz/rest"
)

// configHandler handles GET /config request.
// It returns parameters of the active profile with the server version.
func (s *Server) configHandler(w http.ResponseWriter, _ *http.Request) {
	rest.RenderJSON(w, rest.JSON{"version": s.Version, "profile": s.Detector.Info()})
}
