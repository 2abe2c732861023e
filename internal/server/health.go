package server

import (
	"net/http"
	"time"
)

// Health reports liveness and the number of running extractions.
func Health(registry *Registry, started time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "healthy",
			"uptime":  int64(time.Since(started).Seconds()),
			"running": registry.Len(),
		})
	})
}

// NewRouter wires h and the health check behind the standard middleware stack.
func NewRouter(h *ExtractHandler, token string) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recovery(h.Logger), Logging(h.Logger))
	r.Handle(http.MethodGet, "/health", Health(h.Registry, time.Now()))

	r.Use(BearerAuth(token))
	r.Handler(h)
	return r
}
