package monitor

import (
	"go.uber.org/atomic"
)

type RunState struct {
	StartTimestamp atomic.Int64  `json:"start_timestamp"`
	UpForSeconds   atomic.Uint64 `json:"up_for_seconds"`
}

type RunReport struct {
	State RunState `json:"state"`
}

type ArchiveState struct {
	// Counting documents sent through the bundling service
	UploadsBundled atomic.Uint64 `json:"uploads_bundled"`

	// Counting documents sent as direct transactions when the bundler was unusable
	UploadsDirect atomic.Uint64 `json:"uploads_direct"`

	BytesUploaded atomic.Uint64 `json:"bytes_uploaded"`

	Fetches         atomic.Uint64 `json:"fetches"`
	FetchesFallback atomic.Uint64 `json:"fetches_fallback"`
	Queries         atomic.Uint64 `json:"queries"`
}

type ArchiveErrors struct {
	UploadErrors        atomic.Uint64 `json:"upload_errors"`
	FetchErrors         atomic.Uint64 `json:"fetch_errors"`
	QueryErrors         atomic.Uint64 `json:"query_errors"`
	InsufficientBalance atomic.Uint64 `json:"insufficient_balance"`
}

type ArchiveReport struct {
	State  ArchiveState  `json:"state"`
	Errors ArchiveErrors `json:"errors"`
}

type BatchState struct {
	BatchesCreated   atomic.Uint64 `json:"batches_created"`
	BatchesCommitted atomic.Uint64 `json:"batches_committed"`
	MembersCommitted atomic.Uint64 `json:"members_committed"`
}

type BatchErrors struct {
	CommitErrors atomic.Uint64 `json:"commit_errors"`
}

type BatchReport struct {
	State  BatchState  `json:"state"`
	Errors BatchErrors `json:"errors"`
}

type GatewayState struct {
	LivenessProbes atomic.Uint64 `json:"liveness_probes"`

	// Counting resolutions that fell back to the primary url with every probe down
	ResolvedDegraded atomic.Uint64 `json:"resolved_degraded"`
}

type GatewayReport struct {
	State GatewayState `json:"state"`
}

type Report struct {
	Run     *RunReport     `json:"run,omitempty"`
	Archive *ArchiveReport `json:"archive,omitempty"`
	Batch   *BatchReport   `json:"batch,omitempty"`
	Gateway *GatewayReport `json:"gateway,omitempty"`
}
