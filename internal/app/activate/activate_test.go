package activate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/app/activate"
	"github.com/slok/xferctl/internal/endpoint"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote/remotemock"
)

func TestServiceRun(t *testing.T) {
	errTest := errors.New("whatever")

	tests := map[string]struct {
		endpoint  string
		mock      func(m *remotemock.Client)
		expResult *activate.Result
		expErr    error
	}{
		"Activated endpoints should not start the activation.": {
			endpoint: "site-a",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(true, nil)
			},
			expResult: &activate.Result{EndpointID: "uuid-1111", AlreadyActivated: true},
		},
		"Not activated endpoints should start the activation.": {
			endpoint: "site-a",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(false, nil)
				m.On("Activate", mock.Anything, "uuid-1111").Once().Return("open https://example.org/activate", nil)
			},
			expResult: &activate.Result{EndpointID: "uuid-1111", Instructions: "open https://example.org/activate"},
		},
		"Activation errors should be returned.": {
			endpoint: "site-a",
			mock: func(m *remotemock.Client) {
				m.On("IsActivated", mock.Anything, "uuid-1111").Once().Return(false, nil)
				m.On("Activate", mock.Anything, "uuid-1111").Once().Return("", errTest)
			},
			expErr: errTest,
		},
		"Unknown endpoints should fail.": {
			endpoint: "site-z",
			mock:     func(m *remotemock.Client) {},
			expErr:   model.ErrUnknownEndpoint,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mc := remotemock.NewClient(t)
			test.mock(mc)

			s, err := activate.NewService(activate.ServiceConfig{
				Endpoints: endpoint.NewRegistry(map[string]string{"site-a": "uuid-1111"}),
				Remote:    mc,
			})
			require.NoError(err)

			got, err := s.Run(context.Background(), activate.Request{Endpoint: test.endpoint})
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expResult, got)
		})
	}
}
