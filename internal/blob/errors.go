package blob

import "errors"

var (
	ErrStoreWriteFailed = errors.New("object store write failed")
	ErrBlobNotFound     = errors.New("blob not found")
)
