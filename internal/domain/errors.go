package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrStorageFailure = errors.New("storage failure")
	ErrUnavailable    = errors.New("store unavailable")
	ErrRateLimited    = errors.New("rate limited")
)
