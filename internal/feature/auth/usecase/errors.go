package usecase

import "errors"

// リポジトリ実装が返すエラーです。usecaseはこれらをdomainのエラーに変換します。
var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrPendingNotFound is returned when no pending verification exists for the lookup.
	ErrPendingNotFound = errors.New("pending verification not found")

	// ErrResetNotFound is returned when no password reset exists for the lookup.
	ErrResetNotFound = errors.New("password reset not found")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
)
