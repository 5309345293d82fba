package http

import (
	"net/http"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/pkg/apiclient"
	"github.com/RafatAiub/AmarBin-Backend/pkg/httpx"
)

// LivezHandler is the liveness probe. It answers 200 whenever the process is
// up, with uptime and build version for quick eyeballing.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := apiclient.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
