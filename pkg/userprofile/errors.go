package userprofile

import "errors"

// Predefined errors for the userprofile package.
var (
	// ErrEmptyUserID indicates an empty user id was passed to the store.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrInvalidProfile indicates an empty experiment or variation id.
	ErrInvalidProfile = errors.New("experiment id and variation id cannot be empty")

	// ErrNilClient indicates the Redis store was constructed without a client.
	ErrNilClient = errors.New("redis client is nil")

	// ErrInvalidRedisURL indicates the Redis connection URL could not be parsed.
	ErrInvalidRedisURL = errors.New("failed to parse redis connection url")

	// ErrRedisNotReady indicates all Redis connection attempts failed.
	ErrRedisNotReady = errors.New("redis is not ready")

	// ErrLookupFailed indicates the backing store failed to read a profile.
	ErrLookupFailed = errors.New("user profile lookup failed")

	// ErrSaveFailed indicates the backing store failed to write a profile.
	ErrSaveFailed = errors.New("user profile save failed")
)
