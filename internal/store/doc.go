// Package store defines the task persistence contract: an owner-scoped
// document collection with find, find-one, insert, find-and-update and
// find-and-delete. Backends live under internal/platform and are chosen at
// startup; the rest of the application only sees TaskStore.
package store
