// Package common defines constants, sentinel errors and small helpers shared
// by the HabitKeeper client and server. Match the errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Payload validation.
	ErrorUnknownEntityType = errors.New("unknown entity type")
	ErrorUnknownOperation  = errors.New("unknown operation")
	ErrorInvalidPayload    = errors.New("invalid payload")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
