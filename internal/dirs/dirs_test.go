package dirs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/dirs"
	"github.com/slok/xferctl/internal/endpoint"
	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote/fake"
	"github.com/slok/xferctl/internal/remote/remotemock"
)

var testEndpoints = endpoint.NewRegistry(map[string]string{
	"site-a": "uuid-1111",
	"site-b": "uuid-2222",
})

func TestNewManager(t *testing.T) {
	tests := map[string]struct {
		config dirs.ManagerConfig
		expErr bool
	}{
		"Valid config should create the manager.": {
			config: dirs.ManagerConfig{Endpoints: testEndpoints, Remote: &remotemock.Client{}},
		},
		"Missing endpoints should fail.": {
			config: dirs.ManagerConfig{Remote: &remotemock.Client{}},
			expErr: true,
		},
		"Missing remote should fail.": {
			config: dirs.ManagerConfig{Endpoints: testEndpoints},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := dirs.NewManager(test.config)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, m)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, m)
			}
		})
	}
}

func TestManagerEnsureDirectory(t *testing.T) {
	errTest := errors.New("whatever")

	tests := map[string]struct {
		endpoint string
		path     string
		mock     func(m *remotemock.Client)
		expErr   error
	}{
		"Unknown endpoint should fail before any remote call.": {
			endpoint: "site-c",
			path:     "/a",
			mock:     func(m *remotemock.Client) {},
			expErr:   model.ErrUnknownEndpoint,
		},
		"Not activated endpoint should fail before any mutating call.": {
			endpoint: "site-a",
			path:     "/a/b",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(false, nil)
			},
			expErr: model.ErrEndpointNotActivated,
		},
		"Missing segments should be created from root to leaf.": {
			endpoint: "site-a",
			path:     "/cases/run1/ocn",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/", "").Once().Return([]string{"cases"}, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/cases", "").Once().Return([]string{"run0"}, nil)
				m.On("CreateDirectory", mock.Anything, "uuid-1111", "/cases/run1").Once().Return(nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/cases/run1", "").Once().Return(nil, model.ErrNotFound)
				m.On("CreateDirectory", mock.Anything, "uuid-1111", "/cases/run1/ocn").Once().Return(nil)
			},
		},
		"Existing path should not create anything.": {
			endpoint: "site-b",
			path:     "/cases/",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-2222").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-2222", "/", "").Once().Return([]string{"cases", "other"}, nil)
			},
		},
		"Relative paths should use the first segment as root.": {
			endpoint: "site-a",
			path:     "~/data/run1",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "~", "").Once().Return([]string{"data"}, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "~/data", "").Once().Return([]string{}, nil)
				m.On("CreateDirectory", mock.Anything, "uuid-1111", "~/data/run1").Once().Return(nil)
			},
		},
		"Creation failure should be returned.": {
			endpoint: "site-a",
			path:     "/a",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/", "").Once().Return([]string{}, nil)
				m.On("CreateDirectory", mock.Anything, "uuid-1111", "/a").Once().Return(errTest)
			},
			expErr: errTest,
		},
		"Listing infrastructure failure should be returned.": {
			endpoint: "site-a",
			path:     "/a",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/", "").Once().Return(nil, errTest)
			},
			expErr: errTest,
		},
		"Empty path should fail.": {
			endpoint: "site-a",
			path:     " ",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
			},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			mc := remotemock.NewClient(t)
			test.mock(mc)

			m, err := dirs.NewManager(dirs.ManagerConfig{Endpoints: testEndpoints, Remote: mc, Logger: log.Noop})
			require.NoError(err)

			err = m.EnsureDirectory(context.Background(), test.endpoint, test.path)
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
			} else {
				require.NoError(err)
			}
		})
	}
}

func TestManagerEnsureDirectoryIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, err := fake.NewService(fake.ServiceConfig{})
	require.NoError(err)

	m, err := dirs.NewManager(dirs.ManagerConfig{Endpoints: testEndpoints, Remote: svc})
	require.NoError(err)

	require.NoError(m.EnsureDirectory(ctx, "site-b", "/cases/run1/ocn/proc/tseries/month_1"))
	created := svc.CreatedDirectories()
	assert.Equal([]string{
		"uuid-2222:/cases",
		"uuid-2222:/cases/run1",
		"uuid-2222:/cases/run1/ocn",
		"uuid-2222:/cases/run1/ocn/proc",
		"uuid-2222:/cases/run1/ocn/proc/tseries",
		"uuid-2222:/cases/run1/ocn/proc/tseries/month_1",
	}, created)

	// Second call must not fail nor change the tree.
	require.NoError(m.EnsureDirectory(ctx, "site-b", "/cases/run1/ocn/proc/tseries/month_1"))
	assert.Equal(created, svc.CreatedDirectories())

	// Sibling paths only create the missing leaf.
	require.NoError(m.EnsureDirectory(ctx, "site-b", "/cases/run1/ice"))
	assert.Equal("uuid-2222:/cases/run1/ice", svc.CreatedDirectories()[len(created)])
}

func TestManagerList(t *testing.T) {
	tests := map[string]struct {
		mock   func(m *remotemock.Client)
		exp    []string
		expErr error
	}{
		"Listing should return sorted entries.": {
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/data", "~*.nc").Once().Return([]string{"b.nc", "a.nc"}, nil)
			},
			exp: []string{"a.nc", "b.nc"},
		},
		"Not activated endpoint should fail.": {
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(false, nil)
			},
			expErr: model.ErrEndpointNotActivated,
		},
		"Missing directory should fail.": {
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
				m.On("ListDirectory", mock.Anything, "uuid-1111", "/data", "~*.nc").Once().Return(nil, model.ErrNotFound)
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mc := remotemock.NewClient(t)
			test.mock(mc)

			m, err := dirs.NewManager(dirs.ManagerConfig{Endpoints: testEndpoints, Remote: mc})
			require.NoError(err)

			got, err := m.List(context.Background(), "site-a", "/data", "~*.nc")
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.exp, got)
		})
	}
}
