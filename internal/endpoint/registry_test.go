package endpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/endpoint"
	"github.com/slok/xferctl/internal/model"
)

func TestRegistryResolve(t *testing.T) {
	endpoints := map[string]string{
		"site-a": "uuid-1111",
		"site-b": "uuid-2222",
	}

	tests := map[string]struct {
		name   string
		expID  string
		expErr error
	}{
		"Known endpoint should resolve to its UUID.": {
			name:  "site-a",
			expID: "uuid-1111",
		},
		"Other known endpoint should resolve to its UUID.": {
			name:  "site-b",
			expID: "uuid-2222",
		},
		"Unknown endpoint should fail.": {
			name:   "site-c",
			expErr: model.ErrUnknownEndpoint,
		},
		"Empty endpoint name should fail.": {
			name:   "",
			expErr: model.ErrUnknownEndpoint,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			reg := endpoint.NewRegistry(endpoints)

			// Resolving multiple times should be stable.
			for i := 0; i < 3; i++ {
				gotID, err := reg.Resolve(test.name)
				if test.expErr != nil {
					require.ErrorIs(err, test.expErr)
					assert.Empty(gotID)
					continue
				}
				require.NoError(err)
				assert.Equal(test.expID, gotID)
			}
		})
	}
}

func TestRegistryIsolatedFromSourceMap(t *testing.T) {
	assert := assert.New(t)

	endpoints := map[string]string{"site-a": "uuid-1111"}
	reg := endpoint.NewRegistry(endpoints)
	endpoints["site-a"] = "uuid-9999"
	endpoints["site-z"] = "uuid-0000"

	got, err := reg.Resolve("site-a")
	assert.NoError(err)
	assert.Equal("uuid-1111", got)

	_, err = reg.Resolve("site-z")
	assert.ErrorIs(err, model.ErrUnknownEndpoint)
}

func TestRegistryEndpoints(t *testing.T) {
	reg := endpoint.NewRegistry(map[string]string{
		"glade":    "d33b3614-6d04-11e5-ba46-22000b92c6ec",
		"campaign": "6b5ab960-7bbf-11e8-9450-0a6d4e044368",
	})

	exp := []model.Endpoint{
		{Name: "campaign", UUID: "6b5ab960-7bbf-11e8-9450-0a6d4e044368"},
		{Name: "glade", UUID: "d33b3614-6d04-11e5-ba46-22000b92c6ec"},
	}
	assert.Equal(t, exp, reg.Endpoints())
}
