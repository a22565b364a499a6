package archive

import "errors"

var (
	ErrEmptyPayload         = errors.New("payload is empty")
	ErrBadCorrelationKey    = errors.New("correlation key is invalid")
	ErrNoFiles              = errors.New("no files to upload")
	ErrNoSigner             = errors.New("no signing capability")
	ErrDocumentIdEmpty      = errors.New("document id is empty")
	ErrAllUploadTiersFailed = errors.New("all upload tiers failed")
)
