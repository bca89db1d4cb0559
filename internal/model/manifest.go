package model

// ManifestPair is a single source and destination path of a batch transfer.
type ManifestPair struct {
	Source      string
	Destination string
	// Options are the per line transfer options (e.g. `--recursive`), written
	// before the paths.
	Options []string
}

// Manifest is a batch of paths submitted as a single transfer task.
type Manifest struct {
	Pairs []ManifestPair
}

// NewManifest zips the source and destination paths positionally. If the lists
// don't have the same length the result is truncated to the shorter one.
func NewManifest(srcPaths, dstPaths []string) Manifest {
	n := min(len(srcPaths), len(dstPaths))

	pairs := make([]ManifestPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, ManifestPair{Source: srcPaths[i], Destination: dstPaths[i]})
	}

	return Manifest{Pairs: pairs}
}
