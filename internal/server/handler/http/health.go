package http

import "net/http"

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Healthy() bool
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	Health HealthChecker
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil && !h.Health.Healthy() {
		writeJSON(w, http.StatusServiceUnavailable, Response{Code: CodeInternal, Message: "store unreachable"})
		return
	}
	writeOK(w, http.StatusOK, "ok")
}
