package api

import (
    "net/http"
    "time"

    "logistica/internal/buildinfo"
)

// DebugJSON reports build information and the effective configuration with
// secrets redacted.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{
        "build":  buildinfo.Info(),
        "time":   s.now().UTC().Format(time.RFC3339),
        "config": s.Config.Redacted(),
    })
}
