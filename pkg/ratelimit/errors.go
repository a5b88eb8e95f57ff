package ratelimit

import "errors"

var (
	ErrNilStore      = errors.New("ratelimit: store is required")
	ErrInvalidConfig = errors.New("ratelimit: limit and window must be positive")
)
