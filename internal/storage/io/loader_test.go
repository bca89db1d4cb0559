package io_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/storage/io"
)

func TestEndpointsYAMLRepository_GetEndpoints(t *testing.T) {
	tests := map[string]struct {
		fs           fstest.MapFS
		path         string
		expEndpoints map[string]string
		expErr       bool
	}{
		"Valid endpoints file should load successfully.": {
			fs: fstest.MapFS{
				"endpoints.yaml": &fstest.MapFile{
					Data: []byte(`glade: d33b3614-6d04-11e5-ba46-22000b92c6ec
campaign: 6b5ab960-7bbf-11e8-9450-0a6d4e044368
`),
				},
			},
			path: "endpoints.yaml",
			expEndpoints: map[string]string{
				"glade":    "d33b3614-6d04-11e5-ba46-22000b92c6ec",
				"campaign": "6b5ab960-7bbf-11e8-9450-0a6d4e044368",
			},
		},
		"Non UUID identifiers should load (only warned).": {
			fs: fstest.MapFS{
				"endpoints.yaml": &fstest.MapFile{
					Data: []byte(`site-a: uuid-1111
site-b: uuid-2222
`),
				},
			},
			path: "endpoints.yaml",
			expEndpoints: map[string]string{
				"site-a": "uuid-1111",
				"site-b": "uuid-2222",
			},
		},
		"Empty file should load an empty mapping.": {
			fs: fstest.MapFS{
				"endpoints.yaml": &fstest.MapFile{Data: []byte("---\n")},
			},
			path:         "endpoints.yaml",
			expEndpoints: map[string]string{},
		},
		"Missing file should fail.": {
			fs:     fstest.MapFS{},
			path:   "endpoints.yaml",
			expErr: true,
		},
		"Invalid YAML should fail.": {
			fs: fstest.MapFS{
				"endpoints.yaml": &fstest.MapFile{Data: []byte("glade: [unclosed\n")},
			},
			path:   "endpoints.yaml",
			expErr: true,
		},
		"Nested values should fail.": {
			fs: fstest.MapFS{
				"endpoints.yaml": &fstest.MapFile{Data: []byte("glade:\n  uuid: d33b3614-6d04-11e5-ba46-22000b92c6ec\n")},
			},
			path:   "endpoints.yaml",
			expErr: true,
		},
		"Empty UUID should fail.": {
			fs: fstest.MapFS{
				"endpoints.yaml": &fstest.MapFile{Data: []byte("glade: \"\"\n")},
			},
			path:   "endpoints.yaml",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := io.NewEndpointsYAMLRepository(test.fs, log.Noop)
			got, err := repo.GetEndpoints(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expEndpoints, got)
		})
	}
}
