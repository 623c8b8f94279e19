// Package service contains the task access layer. It turns validated
// requests into owner-scoped store calls and translates store outcomes
// into the service's sentinel errors.
//
// Error handling:
//   - ErrInvalidTaskID when the ID is not addressable by the store
//   - ErrTaskNotFound when the owner has no such task (including tasks owned
//     by other users, which are indistinguishable from missing ones)
//   - *TaskServiceError wrapping any other store failure
//
// The service depends on the store.TaskStore interface only, never on a
// specific backend.
package service
