package app

import (
	"errors"
	"fmt"
	"time"
)

// InvalidRequestError is special error type returned when any request params are invalid
type InvalidRequestError string

// Error implements error interface
func (e InvalidRequestError) Error() string {
	return string(e)
}

// IsInvalidRequest tells that this error is 'invalid request'.
// Returns always true.
func (InvalidRequestError) IsInvalidRequest() bool {
	return true
}

// IsInvalidRequestError checks if given error is caused by invalid request
func IsInvalidRequestError(err error) bool {
	type invalidReqErr interface {
		IsInvalidRequest() bool
	}

	var e invalidReqErr
	if errors.As(err, &e) {
		return e.IsInvalidRequest()
	}

	return false
}

// NotFoundError is returned when requested resource doesn't exist.
type NotFoundError string

// Error implements error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// IsNotFound tells that this error is 'not found'.
func (NotFoundError) IsNotFound() bool {
	return true
}

// IsNotFoundError checks if given error is caused by missing resource.
func IsNotFoundError(err error) bool {
	type notFoundErr interface {
		IsNotFound() bool
	}

	var e notFoundErr
	if errors.As(err, &e) {
		return e.IsNotFound()
	}

	return false
}

// TooManyRequestsError is returned when local request rate limit can't be satisfied.
type TooManyRequestsError string

// Error implements error interface
func (e TooManyRequestsError) Error() string {
	return string(e)
}

// IsTooManyRequests tells that this error is 'too many requests'.
func (TooManyRequestsError) IsTooManyRequests() bool {
	return true
}

// RateLimitError is returned when github api rate limit is exhausted.
// Reset is the time when limit window resets, zero if unknown.
type RateLimitError struct {
	Reset time.Time
}

// Error implements error interface
func (e RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "github api rate limit exceeded"
	}
	return fmt.Sprintf("github api rate limit exceeded, resets at %s", e.Reset.UTC().Format(time.RFC3339))
}

// IsTooManyRequests tells that this error is 'too many requests'.
func (RateLimitError) IsTooManyRequests() bool {
	return true
}

// IsTooManyRequestsError checks if given error is caused by exceeded request rate, local or remote.
func IsTooManyRequestsError(err error) bool {
	type tooManyReqErr interface {
		IsTooManyRequests() bool
	}

	var e tooManyReqErr
	if errors.As(err, &e) {
		return e.IsTooManyRequests()
	}

	return false
}

// ScheduledForLaterError is returned when data is not available yet, but it's update was scheduled.
type ScheduledForLaterError string

// Error implements error interface
func (e ScheduledForLaterError) Error() string {
	return string(e)
}

// IsScheduledForLater tells that this error is 'scheduled for later'.
func (ScheduledForLaterError) IsScheduledForLater() bool {
	return true
}

// IsScheduledForLaterError checks if given error means that data will be available later.
func IsScheduledForLaterError(err error) bool {
	type scheduledErr interface {
		IsScheduledForLater() bool
	}

	var e scheduledErr
	if errors.As(err, &e) {
		return e.IsScheduledForLater()
	}

	return false
}
