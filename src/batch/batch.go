package batch

import (
	"sync"
	"time"

	"github.com/permadoc/permadoc/src/utils/bundle"

	"github.com/gammazero/deque"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusFailed    Status = "failed"
)

// One payload staged for a bundled commit
type Member struct {
	// Caller defined key, e.g. a file name. Echoed back in the commit result.
	Key  string
	Data []byte
	Tags bundle.Tags
}

type Limits struct {
	MaxFiles int
	MaxBytes int64
	Timeout  time.Duration
}

// Client-side staging area for one bundled commit.
// Mutable only while pending, owned by the Manager.
type Batch struct {
	Id        string
	Limits    Limits
	CreatedAt time.Time

	mtx        sync.Mutex
	status     Status
	committing bool
	members    deque.Deque[*Member]
	numBytes   int64
	result     *CommitResult
	err        error
}

// Read-only view of the batch state
type Snapshot struct {
	Id        string    `json:"id"`
	Status    Status    `json:"status"`
	NumFiles  int       `json:"num_files"`
	NumBytes  int64     `json:"num_bytes"`
	CreatedAt time.Time `json:"created_at"`
	Error     string    `json:"error,omitempty"`
}

type CommittedItem struct {
	Key string `json:"key"`
	Id  string `json:"id"`
}

// Outcome of one bundled commit. Items keep the order members were added in.
type CommitResult struct {
	BundleId  string          `json:"bundle_id"`
	BundleUrl string          `json:"bundle_url"`
	Items     []CommittedItem `json:"items"`
}

func (self *Batch) Snapshot() Snapshot {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	out := Snapshot{
		Id:        self.Id,
		Status:    self.status,
		NumFiles:  self.members.Len(),
		NumBytes:  self.numBytes,
		CreatedAt: self.CreatedAt,
	}
	if self.err != nil {
		out.Error = self.err.Error()
	}
	return out
}

// Appends a member and reports whether a limit got breached.
// Fails when the batch already left the pending state.
func (self *Batch) append(member *Member) (full bool, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.status != StatusPending || self.committing {
		return false, ErrBatchNotPending
	}

	self.members.PushBack(member)
	self.numBytes += int64(len(member.Data))

	full = self.members.Len() >= self.Limits.MaxFiles || self.numBytes >= self.Limits.MaxBytes
	return
}

// Claims the batch for committing so that concurrent triggers
// (size breach and the timeout timer) commit it exactly once
func (self *Batch) claim() (members []*Member, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.status != StatusPending || self.committing {
		return nil, ErrBatchNotPending
	}
	if self.members.Len() == 0 {
		return nil, ErrEmptyBatch
	}

	self.committing = true

	members = make([]*Member, 0, self.members.Len())
	for self.members.Len() > 0 {
		members = append(members, self.members.PopFront())
	}
	return
}

func (self *Batch) finish(result *CommitResult, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.committing = false
	if err != nil {
		self.status = StatusFailed
		self.err = err
		return
	}
	self.status = StatusCommitted
	self.result = result
}

func (self *Batch) outcome() (result *CommitResult, status Status, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.result, self.status, self.err
}

func (self *Batch) isExpired(now time.Time) bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	return self.status == StatusPending &&
		!self.committing &&
		self.members.Len() > 0 &&
		self.Limits.Timeout > 0 &&
		now.Sub(self.CreatedAt) >= self.Limits.Timeout
}
