package batch

import (
	"context"
	"sync"
	"time"

	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/task"

	"github.com/rs/xid"
)

// Commits one claimed set of members as a single bundle.
// The archive wires in the implementation that signs and uploads.
type Committer interface {
	CommitMembers(ctx context.Context, members []*Member) (*CommitResult, error)
}

// Owns batch lifecycles. Commits happen exactly once per batch,
// triggered by an explicit call, a breached limit or the timeout sweep.
type Manager struct {
	*task.Task

	committer Committer

	mtx     sync.Mutex
	batches map[string]*Batch

	// Implicit batch that single uploads get routed into
	// while auto-batching mode is on
	autoId string
}

func NewManager(config *config.Config, committer Committer) (self *Manager) {
	self = new(Manager)
	self.committer = committer
	self.batches = make(map[string]*Batch)

	self.Task = task.NewTask(config, "batch-manager").
		WithPeriodicSubtaskFunc(time.Second, self.sweepExpired).
		WithWorkerPool(config.Batch.NumCommitWorkers)

	return
}

func (self *Manager) defaultLimits() Limits {
	return Limits{
		MaxFiles: self.Config.Batch.MaxFiles,
		MaxBytes: self.Config.Batch.MaxBytes,
		Timeout:  self.Config.Batch.Timeout,
	}
}

// Opens a new pending batch. Zero valued limits fall back to the configured defaults.
func (self *Manager) Create(limits Limits) (id string) {
	defaults := self.defaultLimits()
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = defaults.MaxFiles
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = defaults.MaxBytes
	}
	if limits.Timeout <= 0 {
		limits.Timeout = defaults.Timeout
	}

	batch := &Batch{
		Id:        xid.New().String(),
		Limits:    limits,
		CreatedAt: time.Now(),
		status:    StatusPending,
	}

	self.mtx.Lock()
	self.batches[batch.Id] = batch
	self.mtx.Unlock()

	self.Log.WithField("batch_id", batch.Id).
		WithField("max_files", limits.MaxFiles).
		WithField("max_bytes", limits.MaxBytes).
		Debug("Batch created")

	return batch.Id
}

func (self *Manager) get(id string) (batch *Batch, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	batch, ok := self.batches[id]
	if !ok {
		err = ErrBatchNotFound
	}
	return
}

// Stages a member into the batch. When this addition breaches a limit
// the batch gets committed before the call returns, so the caller
// observes the committed state right away.
func (self *Manager) Add(ctx context.Context, id string, member *Member) (err error) {
	batch, err := self.get(id)
	if err != nil {
		return
	}

	full, err := batch.append(member)
	if err != nil {
		return
	}

	if full {
		_, err = self.commit(ctx, batch)
		if err == ErrBatchNotPending {
			// Lost the race to another trigger, the member is in
			err = nil
		}
	}
	return
}

// Commits the batch. Calling it on a batch that auto-committed already
// returns the stored result instead of an error.
func (self *Manager) Commit(ctx context.Context, id string) (result *CommitResult, err error) {
	batch, err := self.get(id)
	if err != nil {
		return
	}

	result, err = self.commit(ctx, batch)
	if err != ErrBatchNotPending {
		return
	}

	result, status, batchErr := batch.outcome()
	switch status {
	case StatusCommitted:
		return result, nil
	case StatusFailed:
		return nil, batchErr
	default:
		return nil, ErrBatchNotPending
	}
}

func (self *Manager) commit(ctx context.Context, batch *Batch) (result *CommitResult, err error) {
	members, err := batch.claim()
	if err != nil {
		return
	}

	self.Log.WithField("batch_id", batch.Id).WithField("num_files", len(members)).Debug("Committing batch")

	result, err = self.committer.CommitMembers(ctx, members)
	batch.finish(result, err)

	if err != nil {
		self.Log.WithError(err).WithField("batch_id", batch.Id).Error("Batch commit failed")
		return
	}

	self.Log.WithField("batch_id", batch.Id).WithField("bundle_id", result.BundleId).Info("Batch committed")
	return
}

func (self *Manager) Status(id string) (out Snapshot, err error) {
	batch, err := self.get(id)
	if err != nil {
		return
	}
	out = batch.Snapshot()
	return
}

// Snapshots of every known batch, failed ones included
func (self *Manager) List() (out []Snapshot) {
	self.mtx.Lock()
	batches := make([]*Batch, 0, len(self.batches))
	for _, batch := range self.batches {
		batches = append(batches, batch)
	}
	self.mtx.Unlock()

	out = make([]Snapshot, 0, len(batches))
	for _, batch := range batches {
		out = append(out, batch.Snapshot())
	}
	return
}

// Routes subsequent single uploads into one implicit batch
func (self *Manager) EnableAutoBatching(limits Limits) (id string) {
	id = self.Create(limits)

	self.mtx.Lock()
	self.autoId = id
	self.mtx.Unlock()

	self.Log.WithField("batch_id", id).Info("Auto-batching enabled")
	return
}

// Id of the implicit batch, empty when auto-batching is off
func (self *Manager) AutoBatchId() string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.autoId
}

// Turns auto-batching off and flushes whatever accumulated.
// An empty implicit batch just gets dropped.
func (self *Manager) DisableAutoBatching(ctx context.Context) (result *CommitResult, err error) {
	self.mtx.Lock()
	id := self.autoId
	self.autoId = ""
	self.mtx.Unlock()

	if len(id) == 0 {
		return nil, ErrNoAutoBatch
	}

	result, err = self.Commit(ctx, id)
	if err == ErrEmptyBatch {
		err = nil
	}

	self.Log.WithField("batch_id", id).Info("Auto-batching disabled")
	return
}

// Periodic check for pending batches that sat past their timeout.
// Commits run on the worker pool so a slow upload doesn't delay the sweep.
func (self *Manager) sweepExpired() (err error) {
	self.mtx.Lock()
	expired := make([]*Batch, 0)
	now := time.Now()
	for _, batch := range self.batches {
		if batch.isExpired(now) {
			expired = append(expired, batch)
		}
	}
	self.mtx.Unlock()

	for _, batch := range expired {
		batch := batch
		self.SubmitToWorker(func() {
			self.Log.WithField("batch_id", batch.Id).Debug("Batch timed out, committing")
			_, err := self.commit(self.Ctx, batch)
			if err != nil && err != ErrBatchNotPending {
				self.Log.WithError(err).WithField("batch_id", batch.Id).Error("Timed out batch failed to commit")
			}
		})
	}
	return nil
}
