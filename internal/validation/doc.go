// Package validation turns raw task input (query parameters and request
// bodies) into normalized domain values, or into a list of field
// violations. It trims text fields exactly once and never touches storage.
//
// Rules are expressed as go-playground/validator tag strings applied to the
// trimmed values, with the user-facing message chosen by the failing tag.
package validation
