package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// taskIDParam is the route parameter naming a task.
const taskIDParam = "id"

// requireUserID extracts the authenticated user's ID placed in the context
// by the auth middleware. It writes a 401 and returns false if none is
// present, which only happens when a route is mounted without the middleware.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// decodeTaskRequest decodes a task body, writing a 400 on failure.
func decodeTaskRequest(w http.ResponseWriter, r *http.Request) (TaskRequest, bool) {
	var req TaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return TaskRequest{}, false
	}
	return req, true
}
