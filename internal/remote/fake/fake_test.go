package fake_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote"
	"github.com/slok/xferctl/internal/remote/fake"
)

var _ remote.Client = &fake.Service{}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    fake.ServiceConfig
		expErr bool
	}{
		"Empty config should use defaults.": {
			cfg: fake.ServiceConfig{},
		},
		"Non terminal outcomes should fail.": {
			cfg:    fake.ServiceConfig{Outcomes: []model.TaskStatus{model.TaskStatusActive}},
			expErr: true,
		},
		"Negative active polls should fail.": {
			cfg:    fake.ServiceConfig{ActivePolls: -1},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := fake.NewService(test.cfg)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestServiceDirectories(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, err := fake.NewService(fake.ServiceConfig{})
	require.NoError(err)

	_, err = svc.ListDirectory(ctx, "ep", "/a", "")
	require.ErrorIs(err, model.ErrNotFound)

	err = svc.CreateDirectory(ctx, "ep", "/a/b")
	require.ErrorIs(err, model.ErrNotFound)

	require.NoError(svc.CreateDirectory(ctx, "ep", "/a"))
	require.NoError(svc.CreateDirectory(ctx, "ep", "/a/b"))
	require.NoError(svc.CreateDirectory(ctx, "ep", "/a/c.nc"))
	err = svc.CreateDirectory(ctx, "ep", "/a")
	require.ErrorIs(err, model.ErrAlreadyExists)

	got, err := svc.ListDirectory(ctx, "ep", "/", "")
	require.NoError(err)
	assert.Equal([]string{"a"}, got)

	got, err = svc.ListDirectory(ctx, "ep", "/a", "")
	require.NoError(err)
	assert.Equal([]string{"b", "c.nc"}, got)

	got, err = svc.ListDirectory(ctx, "ep", "/a", "~*.nc")
	require.NoError(err)
	assert.Equal([]string{"c.nc"}, got)

	got, err = svc.ListDirectory(ctx, "ep", "/a", "!=b")
	require.NoError(err)
	assert.Equal([]string{"c.nc"}, got)

	got, err = svc.ListDirectory(ctx, "ep", "/a", "!~*.nc")
	require.NoError(err)
	assert.Equal([]string{"b"}, got)

	// Other endpoints are independent.
	got, err = svc.ListDirectory(ctx, "other", "/", "")
	require.NoError(err)
	assert.Empty(got)

	assert.Equal([]string{"ep:/a", "ep:/a/b", "ep:/a/c.nc"}, svc.CreatedDirectories())
}

func TestServiceTaskLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, err := fake.NewService(fake.ServiceConfig{
		Outcomes:    []model.TaskStatus{model.TaskStatusFailed, model.TaskStatusSucceeded},
		ActivePolls: 1,
	})
	require.NoError(err)

	req := model.TransferRequest{
		Source:      model.EndpointPath{UUID: "uuid-1111"},
		Destination: model.EndpointPath{UUID: "uuid-2222"},
	}

	// First task fails after being active.
	sub1, err := svc.SubmitTransfer(ctx, req)
	require.NoError(err)
	var accepted map[string]any
	require.NoError(json.Unmarshal(sub1.Raw, &accepted))
	assert.Equal(sub1.TaskID, accepted["task_id"])

	active, err := svc.ListTasks(ctx, model.TaskStatusActive)
	require.NoError(err)
	assert.Len(active, 1)

	t1, err := svc.PollTask(ctx, sub1.TaskID)
	require.NoError(err)
	assert.Equal(model.TaskStatusActive, t1.Status)
	t1, err = svc.PollTask(ctx, sub1.TaskID)
	require.NoError(err)
	assert.Equal(model.TaskStatusFailed, t1.Status)

	// Second task succeeds, and the outcome is reused afterwards.
	sub2, err := svc.SubmitTransfer(ctx, req)
	require.NoError(err)
	assert.NotEqual(sub1.TaskID, sub2.TaskID)
	sub3, err := svc.SubmitTransfer(ctx, req)
	require.NoError(err)

	for _, id := range []string{sub2.TaskID, sub3.TaskID} {
		_, err = svc.PollTask(ctx, id)
		require.NoError(err)
		tk, err := svc.PollTask(ctx, id)
		require.NoError(err)
		assert.Equal(model.TaskStatusSucceeded, tk.Status)
	}

	assert.Equal([]string{sub1.TaskID, sub2.TaskID, sub3.TaskID}, svc.TaskIDs())
	assert.Len(svc.Submissions(), 3)
	assert.Equal(2, svc.Polls(sub1.TaskID))

	_, err = svc.PollTask(ctx, "missing")
	var pollErr *model.PollError
	require.ErrorAs(err, &pollErr)
}

func TestServiceScriptedActiveCounts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, err := fake.NewService(fake.ServiceConfig{ActiveCounts: []int{90, 80, 3}})
	require.NoError(err)

	for _, exp := range []int{90, 80, 3, 3} {
		tasks, err := svc.ListTasks(ctx, model.TaskStatusActive)
		require.NoError(err)
		assert.Len(tasks, exp)
	}
	assert.Equal(4, svc.TaskListings())
}

func TestServiceInjectedErrors(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	errTest := errors.New("whatever")

	svc, err := fake.NewService(fake.ServiceConfig{})
	require.NoError(err)

	sub, err := svc.SubmitTransfer(ctx, model.TransferRequest{})
	require.NoError(err)

	svc.FailPollsWith(errTest)
	_, err = svc.PollTask(ctx, sub.TaskID)
	var pollErr *model.PollError
	require.ErrorAs(err, &pollErr)
	require.ErrorIs(err, errTest)

	svc.FailSubmissionsWith(errTest)
	_, err = svc.SubmitTransfer(ctx, model.TransferRequest{})
	var subErr *model.SubmissionError
	require.ErrorAs(err, &subErr)
	require.ErrorIs(err, errTest)
}

func TestServiceActivation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, err := fake.NewService(fake.ServiceConfig{Activated: []string{"uuid-1111"}})
	require.NoError(err)

	ok, err := svc.IsActivated(ctx, "uuid-1111")
	require.NoError(err)
	assert.True(ok)

	ok, err = svc.IsActivated(ctx, "uuid-2222")
	require.NoError(err)
	assert.False(ok)

	_, err = svc.Activate(ctx, "uuid-2222")
	require.NoError(err)
	ok, err = svc.IsActivated(ctx, "uuid-2222")
	require.NoError(err)
	assert.True(ok)
}
