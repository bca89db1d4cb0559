package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default xferctl data directory name (relative to home).
	DefaultDataDir = ".xferctl"
	// EndpointsFile is the default endpoints registry file name inside the data dir.
	EndpointsFile = "endpoints.yaml"
	// DBFile is the default transfer journal database file name inside the data dir.
	DBFile = "xferctl.db"
	// DefaultScratchDir is used when TMPDIR is not set.
	DefaultScratchDir = "/tmp"

	// Scratch files.

	// TaskSnapshotSuffix is the suffix of the task acceptance snapshot files.
	TaskSnapshotSuffix = ".json"
	// FailureSnapshotSuffix is the suffix of the task terminal failure snapshot files.
	FailureSnapshotSuffix = ".failure.json"
	// ManifestPrefix is the prefix of the batch manifest files created by xferctl.
	ManifestPrefix = "xferctl.batch."
	// ManifestSuffix is the suffix of the batch manifest files created by xferctl.
	ManifestSuffix = ".filelist"
)

// EndpointsFilePath returns the default endpoints file path.
func EndpointsFilePath(dataDir string) string {
	return filepath.Join(dataDir, EndpointsFile)
}

// DBFilePath returns the default journal database path.
func DBFilePath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// TaskSnapshotPath returns the path of a task acceptance snapshot.
func TaskSnapshotPath(scratchDir, taskID string) string {
	return filepath.Join(scratchDir, taskID+TaskSnapshotSuffix)
}

// FailureSnapshotPath returns the path of a task failure snapshot.
func FailureSnapshotPath(scratchDir, taskID string) string {
	return filepath.Join(scratchDir, taskID+FailureSnapshotSuffix)
}

// ManifestPath returns the path of the manifest created for a transfer run.
func ManifestPath(scratchDir, runID string) string {
	return filepath.Join(scratchDir, ManifestPrefix+runID+ManifestSuffix)
}
