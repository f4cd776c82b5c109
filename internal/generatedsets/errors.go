package generatedsets

import "errors"

var (
	// ErrNotFound indicates the generated set does not exist for the user.
	ErrNotFound = errors.New("generated set not found")

	// ErrInvalidType indicates an artifact type other than problems or solutions.
	ErrInvalidType = errors.New(`type must be "problems" or "solutions"`)

	// ErrPublish indicates rendered artifacts could not be stored.
	ErrPublish = errors.New("failed to publish generated artifacts")
)
