package auth

import "errors"

// Errors returned by JWTService.ValidateToken. The auth middleware answers
// ErrExpiredToken with "Token expired" and the rest with "Invalid token".
var (
	// ErrInvalidToken covers malformed tokens, bad signatures, unexpected
	// algorithms and access tokens without a user ID.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken means the access token's exp lies beyond the clock skew.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid means the token's nbf lies in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrWrongTokenType means the token is validly signed but is not an access token.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrMissingToken means an empty token string was passed for validation.
	ErrMissingToken = errors.New("authentication token is missing")
)
