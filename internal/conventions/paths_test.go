package conventions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/xferctl/internal/conventions"
)

func TestScratchPaths(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("/scratch/abc-123.json", conventions.TaskSnapshotPath("/scratch", "abc-123"))
	assert.Equal("/scratch/abc-123.failure.json", conventions.FailureSnapshotPath("/scratch", "abc-123"))
	assert.Equal("/scratch/xferctl.batch.01J0000000000000000000000.filelist", conventions.ManifestPath("/scratch", "01J0000000000000000000000"))
	assert.Equal("/home/u/.xferctl/endpoints.yaml", conventions.EndpointsFilePath("/home/u/.xferctl"))
	assert.Equal("/home/u/.xferctl/xferctl.db", conventions.DBFilePath("/home/u/.xferctl"))
}
