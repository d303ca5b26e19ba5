package document

import "errors"

var (
	ErrInvalidReference  = errors.New("invalid document reference")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
