// Package domain contains the task entity, its closed status and priority
// types, and the validation error types shared by every layer. It has no
// knowledge of storage or transport.
package domain
