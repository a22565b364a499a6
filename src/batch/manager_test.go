package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/permadoc/permadoc/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var errCommitRefused = errors.New("commit refused")

// Committer stub, records every call and optionally fails
type fakeCommitter struct {
	mtx   sync.Mutex
	calls [][]*Member
	fail  bool
}

func (self *fakeCommitter) CommitMembers(ctx context.Context, members []*Member) (*CommitResult, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.calls = append(self.calls, members)

	if self.fail {
		return nil, errCommitRefused
	}

	out := &CommitResult{
		BundleId:  fmt.Sprintf("bundle-%d", len(self.calls)),
		BundleUrl: "https://gateway.test/bundle",
		Items:     make([]CommittedItem, 0, len(members)),
	}
	for i, member := range members {
		out.Items = append(out.Items, CommittedItem{Key: member.Key, Id: fmt.Sprintf("item-%d", i)})
	}
	return out, nil
}

func (self *fakeCommitter) numCalls() int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return len(self.calls)
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

type ManagerTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	committer *fakeCommitter
	manager   *Manager
}

func (s *ManagerTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *ManagerTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *ManagerTestSuite) SetupTest() {
	s.committer = &fakeCommitter{}
	s.manager = NewManager(config.Default(), s.committer)
}

func (s *ManagerTestSuite) member(key string, numBytes int) *Member {
	return &Member{Key: key, Data: make([]byte, numBytes)}
}

func (s *ManagerTestSuite) TestUnknownBatch() {
	err := s.manager.Add(s.ctx, "missing", s.member("a", 1))
	require.Equal(s.T(), ErrBatchNotFound, err)

	_, err = s.manager.Commit(s.ctx, "missing")
	require.Equal(s.T(), ErrBatchNotFound, err)

	_, err = s.manager.Status("missing")
	require.Equal(s.T(), ErrBatchNotFound, err)
}

func (s *ManagerTestSuite) TestEmptyCommit() {
	id := s.manager.Create(Limits{})

	_, err := s.manager.Commit(s.ctx, id)
	require.Equal(s.T(), ErrEmptyBatch, err)
}

func (s *ManagerTestSuite) TestExplicitCommit() {
	id := s.manager.Create(Limits{MaxFiles: 10})

	require.Nil(s.T(), s.manager.Add(s.ctx, id, s.member("first", 10)))
	require.Nil(s.T(), s.manager.Add(s.ctx, id, s.member("second", 20)))

	snapshot, err := s.manager.Status(id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), StatusPending, snapshot.Status)
	require.Equal(s.T(), 2, snapshot.NumFiles)
	require.Equal(s.T(), int64(30), snapshot.NumBytes)

	result, err := s.manager.Commit(s.ctx, id)
	require.Nil(s.T(), err)
	require.Len(s.T(), result.Items, 2)

	// Result keeps the add order
	require.Equal(s.T(), "first", result.Items[0].Key)
	require.Equal(s.T(), "second", result.Items[1].Key)

	snapshot, err = s.manager.Status(id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), StatusCommitted, snapshot.Status)
}

func (s *ManagerTestSuite) TestAutoCommitOnFileLimit() {
	id := s.manager.Create(Limits{MaxFiles: 3})

	for i := 0; i < 3; i++ {
		err := s.manager.Add(s.ctx, id, s.member(fmt.Sprintf("file-%d", i), 1))
		require.Nil(s.T(), err)
	}

	// Exactly one commit with exactly the three staged members
	require.Equal(s.T(), 1, s.committer.numCalls())
	require.Len(s.T(), s.committer.calls[0], 3)

	snapshot, err := s.manager.Status(id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), StatusCommitted, snapshot.Status)

	// Committing after the auto-commit hands back the stored result
	result, err := s.manager.Commit(s.ctx, id)
	require.Nil(s.T(), err)
	require.Len(s.T(), result.Items, 3)
	require.Equal(s.T(), 1, s.committer.numCalls())

	// The batch left pending, adding is over
	err = s.manager.Add(s.ctx, id, s.member("late", 1))
	require.Equal(s.T(), ErrBatchNotPending, err)
}

func (s *ManagerTestSuite) TestAutoCommitOnByteLimit() {
	id := s.manager.Create(Limits{MaxFiles: 100, MaxBytes: 50})

	require.Nil(s.T(), s.manager.Add(s.ctx, id, s.member("small", 10)))
	require.Equal(s.T(), 0, s.committer.numCalls())

	require.Nil(s.T(), s.manager.Add(s.ctx, id, s.member("big", 40)))
	require.Equal(s.T(), 1, s.committer.numCalls())
	require.Len(s.T(), s.committer.calls[0], 2)
}

func (s *ManagerTestSuite) TestFailedCommitKeepsBatch() {
	s.committer.fail = true

	id := s.manager.Create(Limits{})
	require.Nil(s.T(), s.manager.Add(s.ctx, id, s.member("doomed", 1)))

	_, err := s.manager.Commit(s.ctx, id)
	require.Equal(s.T(), errCommitRefused, err)

	// All or nothing, no member got through and the failure is inspectable
	snapshot, err := s.manager.Status(id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), StatusFailed, snapshot.Status)
	require.Equal(s.T(), errCommitRefused.Error(), snapshot.Error)

	// Repeated commit reports the failure instead of retrying
	_, err = s.manager.Commit(s.ctx, id)
	require.Equal(s.T(), errCommitRefused, err)
	require.Equal(s.T(), 1, s.committer.numCalls())

	require.Len(s.T(), s.manager.List(), 1)
}

func (s *ManagerTestSuite) TestDefaultLimits() {
	conf := config.Default()
	id := s.manager.Create(Limits{})

	batch, err := s.manager.get(id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), conf.Batch.MaxFiles, batch.Limits.MaxFiles)
	require.Equal(s.T(), conf.Batch.MaxBytes, batch.Limits.MaxBytes)
	require.Equal(s.T(), conf.Batch.Timeout, batch.Limits.Timeout)
}

func (s *ManagerTestSuite) TestAutoBatching() {
	require.Empty(s.T(), s.manager.AutoBatchId())

	id := s.manager.EnableAutoBatching(Limits{MaxFiles: 100})
	require.Equal(s.T(), id, s.manager.AutoBatchId())

	require.Nil(s.T(), s.manager.Add(s.ctx, id, s.member("queued", 5)))

	result, err := s.manager.DisableAutoBatching(s.ctx)
	require.Nil(s.T(), err)
	require.Len(s.T(), result.Items, 1)
	require.Empty(s.T(), s.manager.AutoBatchId())

	_, err = s.manager.DisableAutoBatching(s.ctx)
	require.Equal(s.T(), ErrNoAutoBatch, err)
}

func (s *ManagerTestSuite) TestDisableEmptyAutoBatch() {
	s.manager.EnableAutoBatching(Limits{})

	result, err := s.manager.DisableAutoBatching(s.ctx)
	require.Nil(s.T(), err)
	require.Nil(s.T(), result)
	require.Equal(s.T(), 0, s.committer.numCalls())
}
