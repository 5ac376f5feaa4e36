package apperror

import "errors"

var (
	ErrNotFound         = errors.New("game not found")
	ErrInvalidMove      = errors.New("invalid move")
	ErrDuplicateSession = errors.New("game already exists")
	ErrInvalidSide      = errors.New("invalid side")
)
