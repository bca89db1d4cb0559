package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/xferctl/internal/model"
)

func TestNewManifest(t *testing.T) {
	tests := map[string]struct {
		src []string
		dst []string
		exp []model.ManifestPair
	}{
		"Equal length lists should be zipped in order.": {
			src: []string{"/x/f1.nc", "/x/f2.nc", "/x/f3.nc"},
			dst: []string{"/y/f1.nc", "/y/f2.nc", "/y/f3.nc"},
			exp: []model.ManifestPair{
				{Source: "/x/f1.nc", Destination: "/y/f1.nc"},
				{Source: "/x/f2.nc", Destination: "/y/f2.nc"},
				{Source: "/x/f3.nc", Destination: "/y/f3.nc"},
			},
		},
		"More sources than destinations should truncate to destinations.": {
			src: []string{"/x/f1.nc", "/x/f2.nc"},
			dst: []string{"/y/f1.nc"},
			exp: []model.ManifestPair{
				{Source: "/x/f1.nc", Destination: "/y/f1.nc"},
			},
		},
		"More destinations than sources should truncate to sources.": {
			src: []string{"/x/f1.nc"},
			dst: []string{"/y/f1.nc", "/y/f2.nc"},
			exp: []model.ManifestPair{
				{Source: "/x/f1.nc", Destination: "/y/f1.nc"},
			},
		},
		"Empty lists should return an empty manifest.": {
			exp: []model.ManifestPair{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := model.NewManifest(test.src, test.dst)
			assert.Equal(t, test.exp, got.Pairs)
		})
	}
}
