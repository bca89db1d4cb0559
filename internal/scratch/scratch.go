// Package scratch persists the local diagnostic files of the transfers: task
// snapshots, failure snapshots and batch manifests.
//
// Nothing written here is ever deleted by xferctl, cleanup is left to the scratch
// space owner.
package scratch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/slok/xferctl/internal/conventions"
	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
)

// DefaultDir returns the scratch directory from TMPDIR, falling back to /tmp.
func DefaultDir(logger log.Logger) string {
	if dir := os.Getenv("TMPDIR"); dir != "" {
		return dir
	}

	if logger != nil {
		logger.Warningf("TMPDIR not found in environment, using %s", conventions.DefaultScratchDir)
	}
	return conventions.DefaultScratchDir
}

// StoreConfig is the configuration for the scratch store.
type StoreConfig struct {
	Dir    string
	Logger log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "scratch.Store"})
	return nil
}

// Store writes the transfer diagnostic files on the local scratch space.
type Store struct {
	dir    string
	logger log.Logger
}

// NewStore creates a new scratch store. The directory is created if missing.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create scratch directory: %w", err)
	}

	return &Store{
		dir:    cfg.Dir,
		logger: cfg.Logger,
	}, nil
}

// Dir returns the scratch directory.
func (s *Store) Dir() string { return s.dir }

// WriteTaskSnapshot persists the acceptance response of a task as `{task_id}.json`.
func (s *Store) WriteTaskSnapshot(taskID string, raw json.RawMessage) (string, error) {
	if err := validateTaskID(taskID); err != nil {
		return "", err
	}

	path := conventions.TaskSnapshotPath(s.dir, taskID)
	if err := s.writeJSON(path, raw); err != nil {
		return "", fmt.Errorf("could not write task snapshot: %w", err)
	}

	s.logger.Debugf("Task snapshot written: %s", path)
	return path, nil
}

// WriteFailureSnapshot persists the terminal status payload of an unsuccessful task
// as `{task_id}.failure.json`.
func (s *Store) WriteFailureSnapshot(taskID string, raw json.RawMessage) (string, error) {
	if err := validateTaskID(taskID); err != nil {
		return "", err
	}

	path := conventions.FailureSnapshotPath(s.dir, taskID)
	if err := s.writeJSON(path, raw); err != nil {
		return "", fmt.Errorf("could not write failure snapshot: %w", err)
	}

	s.logger.Debugf("Failure snapshot written: %s", path)
	return path, nil
}

func (s *Store) writeJSON(path string, raw json.RawMessage) error {
	data := []byte(raw)
	var b bytes.Buffer
	if err := json.Indent(&b, raw, "", "  "); err == nil {
		b.WriteByte('\n')
		data = b.Bytes()
	}

	return os.WriteFile(path, data, 0644)
}

// WriteManifest writes the batch manifest of a transfer run, one `{source} {destination}`
// line per pair, in order. Manifests are immutable, writing an existing one fails.
func (s *Store) WriteManifest(runID string, m model.Manifest) (string, error) {
	lines := make([]string, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		line, err := manifestLine(p)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}

	path := conventions.ManifestPath(s.dir, runID)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("manifest %s: %w", path, model.ErrAlreadyExists)
		}
		return "", fmt.Errorf("could not create manifest: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return "", fmt.Errorf("could not write manifest: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("could not write manifest: %w", err)
	}

	s.logger.Debugf("Manifest with %d entries written: %s", len(m.Pairs), path)
	return path, nil
}

// ReadManifest reads a batch manifest file. Empty lines and `#` comments are ignored.
func ReadManifest(path string) (model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("could not read manifest: %w", err)
	}

	m := model.Manifest{Pairs: []model.ManifestPair{}}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pair, err := parseManifestLine(line)
		if err != nil {
			return model.Manifest{}, fmt.Errorf("manifest line %d: %w", n, err)
		}
		m.Pairs = append(m.Pairs, pair)
	}
	if err := sc.Err(); err != nil {
		return model.Manifest{}, fmt.Errorf("could not read manifest: %w", err)
	}

	return m, nil
}

// Batch options that take a value, the rest are flags.
var manifestValueOptions = map[string]bool{
	"--external-checksum":  true,
	"--checksum-algorithm": true,
}

// manifestLine renders a pair using the shell quoting understood by the transfer
// service batch parser. Plain paths are written as they are.
func manifestLine(p model.ManifestPair) (string, error) {
	for _, path := range []string{p.Source, p.Destination} {
		if path == "" {
			return "", fmt.Errorf("manifest paths can't be empty: %w", model.ErrNotValid)
		}
		if strings.ContainsAny(path, "\n\r") {
			return "", fmt.Errorf("manifest path %q can't have line breaks: %w", path, model.ErrNotValid)
		}
	}

	words := make([]string, 0, len(p.Options)+2)
	words = append(words, p.Options...)
	words = append(words, p.Source, p.Destination)

	return shellquote.Join(words...), nil
}

// parseManifestLine splits a batch line shell style, options can be placed
// anywhere and exactly two paths are required.
func parseManifestLine(line string) (model.ManifestPair, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return model.ManifestPair{}, fmt.Errorf("%w: %w", err, model.ErrNotValid)
	}

	var opts, paths []string
	for i := 0; i < len(words); i++ {
		word := words[i]
		if !strings.HasPrefix(word, "--") {
			paths = append(paths, word)
			continue
		}

		opts = append(opts, word)
		if manifestValueOptions[word] {
			if i+1 >= len(words) {
				return model.ManifestPair{}, fmt.Errorf("option %s requires a value: %w", word, model.ErrNotValid)
			}
			i++
			opts = append(opts, words[i])
		}
	}

	if len(paths) != 2 {
		return model.ManifestPair{}, fmt.Errorf("must have source and destination paths: %w", model.ErrNotValid)
	}

	return model.ManifestPair{Source: paths[0], Destination: paths[1], Options: opts}, nil
}

// Task IDs come from the remote service, they must not escape the scratch dir.
func validateTaskID(taskID string) error {
	if taskID == "" || strings.ContainsAny(taskID, `/\`) || strings.HasPrefix(taskID, ".") {
		return fmt.Errorf("invalid task id %q: %w", taskID, model.ErrNotValid)
	}
	return nil
}
