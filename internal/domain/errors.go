package domain

import "errors"

var (
	ErrUnknownCard    = errors.New("unknown card")
	ErrDuplicateCard  = errors.New("duplicate card")
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidColumn  = errors.New("invalid column")
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrSchemaMismatch = errors.New("layout schema mismatch")
)
