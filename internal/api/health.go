package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
)

// HealthResponse is the body of the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthCheck handles GET /health requests. It does not touch the store.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "OK", Message: "Server is running"})
}

// RouteNotFound answers requests that match no route.
func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers requests whose path matches a route but whose
// method does not.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
