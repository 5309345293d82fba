package http

import (
	"net/http"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/internal/revocation"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// ReadyzHandler is the readiness probe. The database is a hard dependency,
// so a failed ping flips the probe to 503. The revocation cache is reported
// but never fails readiness: token checks degrade without it.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cache revocation.Cache,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &apiclient.HealthChecks{
			Database: "ok",
			Cache:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !cache.Available(r.Context()) {
			checks.Cache = "unavailable"
		}

		response := apiclient.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
