package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrStorageIO       = errors.New("storage io error")
)

var ErrRateLimited = errors.New("rate limited")
