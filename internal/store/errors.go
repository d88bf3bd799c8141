package store

import "errors"

var (
	ErrUnknownSession   = errors.New("unknown session")
	ErrUnknownTable     = errors.New("unknown table")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrInvalidTimestamp = errors.New("invalid collected_at timestamp")
	ErrNoSnapshot       = errors.New("no snapshot generated")
)
