package ingest

import "errors"

var (
	ErrEmptyContent         = errors.New("document has no content")
	ErrOrphanedIndexEntries = errors.New("no index entries found for deleted blob")
	ErrBatchFailed          = errors.New("one or more index actions failed")
)
