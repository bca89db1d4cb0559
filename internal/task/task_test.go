package task_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote/fake"
	"github.com/slok/xferctl/internal/remote/remotemock"
	"github.com/slok/xferctl/internal/scratch"
	"github.com/slok/xferctl/internal/task"
	"github.com/slok/xferctl/internal/wait"
)

func noSleep(sleeps *[]time.Duration) wait.Sleeper {
	return wait.SleeperFunc(func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return ctx.Err()
	})
}

func testRequest() model.TransferRequest {
	return model.TransferRequest{
		Source:      model.EndpointPath{UUID: "uuid-1111", Path: "/"},
		Destination: model.EndpointPath{UUID: "uuid-2222", Path: "/"},
		Label:       "test",
	}
}

func newStore(t *testing.T) *scratch.Store {
	s, err := scratch.NewStore(scratch.StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestManagerSubmitAndAwait(t *testing.T) {
	tests := map[string]struct {
		outcome     model.TaskStatus
		activePolls int
		expOK       bool
		expSleeps   int
	}{
		"A task that succeeds right away should return true without sleeping.": {
			outcome: model.TaskStatusSucceeded,
			expOK:   true,
		},
		"A task that is active for some polls should wait and return true.": {
			outcome:     model.TaskStatusSucceeded,
			activePolls: 3,
			expOK:       true,
			expSleeps:   3,
		},
		"A failed task should return false.": {
			outcome:     model.TaskStatusFailed,
			activePolls: 1,
			expOK:       false,
			expSleeps:   1,
		},
		"An inactive task should return false.": {
			outcome: model.TaskStatusInactive,
			expOK:   false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			svc, err := fake.NewService(fake.ServiceConfig{
				Outcomes:    []model.TaskStatus{test.outcome},
				ActivePolls: test.activePolls,
			})
			require.NoError(err)
			store := newStore(t)
			var sleeps []time.Duration

			m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: store, Sleeper: noSleep(&sleeps)})
			require.NoError(err)

			tk, err := m.SubmitAsync(context.Background(), testRequest())
			require.NoError(err)
			assert.NotEmpty(tk.ID)
			assert.FileExists(filepath.Join(store.Dir(), tk.ID+".json"))

			ok, err := m.AwaitCompletion(context.Background(), tk)
			require.NoError(err)
			assert.Equal(test.expOK, ok)
			assert.Equal(test.outcome, tk.Status)
			assert.Len(sleeps, test.expSleeps)
			for _, s := range sleeps {
				assert.Equal(task.DefaultPollInterval, s)
			}

			failures, err := filepath.Glob(filepath.Join(store.Dir(), "*.failure.json"))
			require.NoError(err)
			if test.expOK {
				assert.Empty(failures)
				assert.Empty(tk.FailureSnapshot)
			} else {
				assert.Equal([]string{filepath.Join(store.Dir(), tk.ID+".failure.json")}, failures)
				assert.Equal(failures[0], tk.FailureSnapshot)
			}
		})
	}
}

func TestManagerAwaitCompletionWritesTerminalPayload(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mc := remotemock.NewClient(t)
	mc.On("PollTask", mock.Anything, "task-1").Once().Return(&model.Task{ID: "task-1", Status: model.TaskStatusActive}, nil)
	mc.On("PollTask", mock.Anything, "task-1").Once().Return(&model.Task{
		ID:     "task-1",
		Status: model.TaskStatusFailed,
		Raw:    []byte(`{"task_id":"task-1","status":"FAILED","nice_status":"PERMISSION_DENIED"}`),
	}, nil)

	store := newStore(t)
	var sleeps []time.Duration
	m, err := task.NewManager(task.ManagerConfig{
		Remote:       mc,
		Snapshots:    store,
		Sleeper:      noSleep(&sleeps),
		PollInterval: time.Second,
	})
	require.NoError(err)

	ok, err := m.AwaitCompletion(context.Background(), &model.Task{ID: "task-1"})
	require.NoError(err)
	assert.False(ok)
	assert.Equal([]time.Duration{time.Second}, sleeps)

	got, err := os.ReadFile(filepath.Join(store.Dir(), "task-1.failure.json"))
	require.NoError(err)
	assert.JSONEq(`{"task_id":"task-1","status":"FAILED","nice_status":"PERMISSION_DENIED"}`, string(got))
}

type failingSnapshots struct {
	*scratch.Store
}

func (failingSnapshots) WriteFailureSnapshot(string, json.RawMessage) (string, error) {
	return "", errors.New("disk full")
}

func TestManagerAwaitCompletionSnapshotFailureIsNotFatal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	svc, err := fake.NewService(fake.ServiceConfig{Outcomes: []model.TaskStatus{model.TaskStatusFailed}})
	require.NoError(err)
	store := newStore(t)
	m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: failingSnapshots{Store: store}})
	require.NoError(err)

	tk, err := m.SubmitAsync(context.Background(), testRequest())
	require.NoError(err)

	ok, err := m.AwaitCompletion(context.Background(), tk)
	require.NoError(err)
	assert.False(ok)
	assert.Equal(model.TaskStatusFailed, tk.Status)
	assert.Empty(tk.FailureSnapshot)
	assert.NoFileExists(filepath.Join(store.Dir(), tk.ID+".failure.json"))
}

func TestManagerErrors(t *testing.T) {
	errTest := errors.New("whatever")

	t.Run("A rejected submission should return a submission error.", func(t *testing.T) {
		require := require.New(t)

		svc, err := fake.NewService(fake.ServiceConfig{})
		require.NoError(err)
		svc.FailSubmissionsWith(errTest)

		m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: newStore(t)})
		require.NoError(err)

		_, err = m.SubmitAsync(context.Background(), testRequest())
		var subErr *model.SubmissionError
		require.ErrorAs(err, &subErr)
		require.ErrorIs(err, errTest)
	})

	t.Run("A plain client error on submission should be wrapped as a submission error.", func(t *testing.T) {
		require := require.New(t)

		mc := remotemock.NewClient(t)
		mc.On("SubmitTransfer", mock.Anything, mock.Anything).Once().Return(nil, errTest)

		m, err := task.NewManager(task.ManagerConfig{Remote: mc, Snapshots: newStore(t)})
		require.NoError(err)

		_, err = m.SubmitAsync(context.Background(), testRequest())
		var subErr *model.SubmissionError
		require.ErrorAs(err, &subErr)
		require.ErrorIs(err, errTest)
	})

	t.Run("A broken poll should return a poll error.", func(t *testing.T) {
		require := require.New(t)

		svc, err := fake.NewService(fake.ServiceConfig{})
		require.NoError(err)
		m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: newStore(t)})
		require.NoError(err)

		tk, err := m.SubmitAsync(context.Background(), testRequest())
		require.NoError(err)
		svc.FailPollsWith(errTest)

		_, err = m.AwaitCompletion(context.Background(), tk)
		var pollErr *model.PollError
		require.ErrorAs(err, &pollErr)
		require.Equal(tk.ID, pollErr.TaskID)
	})

	t.Run("A cancelled context should stop the wait.", func(t *testing.T) {
		require := require.New(t)

		svc, err := fake.NewService(fake.ServiceConfig{ActivePolls: 100})
		require.NoError(err)
		var sleeps []time.Duration
		m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: newStore(t), Sleeper: noSleep(&sleeps)})
		require.NoError(err)

		tk, err := m.SubmitAsync(context.Background(), testRequest())
		require.NoError(err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = m.AwaitCompletion(ctx, tk)
		require.ErrorIs(err, context.Canceled)
		var pollErr *model.PollError
		require.False(errors.As(err, &pollErr))
	})

	t.Run("A context cancelled while sleeping between polls should not be a poll error.", func(t *testing.T) {
		require := require.New(t)

		svc, err := fake.NewService(fake.ServiceConfig{ActivePolls: 100})
		require.NoError(err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sleeper := wait.SleeperFunc(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		})
		m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: newStore(t), Sleeper: sleeper})
		require.NoError(err)

		tk, err := m.SubmitAsync(context.Background(), testRequest())
		require.NoError(err)

		_, err = m.AwaitCompletion(ctx, tk)
		require.ErrorIs(err, context.Canceled)
		var pollErr *model.PollError
		require.False(errors.As(err, &pollErr))
		require.Equal(1, svc.Polls(tk.ID))
	})
}

func TestManagerListTasks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	svc, err := fake.NewService(fake.ServiceConfig{ActiveCounts: []int{3}})
	require.NoError(err)
	m, err := task.NewManager(task.ManagerConfig{Remote: svc, Snapshots: newStore(t)})
	require.NoError(err)

	tasks, err := m.ListTasks(context.Background(), model.TaskStatusActive)
	require.NoError(err)
	assert.Len(tasks, 3)

	_, err = m.ListTasks(context.Background(), model.TaskStatus("WHATEVER"))
	assert.ErrorIs(err, model.ErrNotValid)
}
