// Package api handles the task HTTP endpoints. It decodes and validates
// requests, calls the task service with the authenticated user's ID, and
// maps every outcome onto a status code and a JSON body whose field names
// match what the web client already consumes.
package api
