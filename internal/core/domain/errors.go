package domain

import "errors"

var (
	ErrInvalidPoint   = errors.New("invalid geo point")
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrInvalidSession = errors.New("invalid session")
	ErrNotFound       = errors.New("not found")
	ErrNoSelection    = errors.New("no point selected")
)
