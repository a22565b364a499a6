package batch

import "errors"

var (
	ErrBatchNotFound   = errors.New("batch not found")
	ErrBatchNotPending = errors.New("batch is no longer pending")
	ErrEmptyBatch      = errors.New("batch has no members")
	ErrNoAutoBatch     = errors.New("auto-batching is not enabled")
)
