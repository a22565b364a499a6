package task

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/permadoc/permadoc/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestTaskTestSuite(t *testing.T) {
	suite.Run(t, new(TaskTestSuite))
}

type TaskTestSuite struct {
	suite.Suite
}

func (s *TaskTestSuite) TestStopWaitWaitsForSubtasks() {
	var finished atomic.Bool

	task := NewTask(config.Default(), "test-task")
	task.WithSubtaskFunc(func() error {
		<-task.StopChannel

		// Simulates cleanup that outlives the stop signal
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	require.Nil(s.T(), task.Start())
	task.StopWait()

	require.True(s.T(), finished.Load())
}

func (s *TaskTestSuite) TestStopCancelsContext() {
	task := NewTask(config.Default(), "test-task")

	require.Nil(s.T(), task.Start())
	require.Nil(s.T(), task.Ctx.Err())

	task.StopWait()
	require.NotNil(s.T(), task.Ctx.Err())
}

func (s *TaskTestSuite) TestWorkerPoolDrainsBeforeStop() {
	var done atomic.Int64

	task := NewTask(config.Default(), "test-task").WithWorkerPool(2)
	task.WithSubtaskFunc(func() error {
		<-task.StopChannel
		return nil
	})
	require.Nil(s.T(), task.Start())

	for i := 0; i < 5; i++ {
		task.SubmitToWorker(func() {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
		})
	}

	task.StopWait()
	require.EqualValues(s.T(), 5, done.Load())
}
