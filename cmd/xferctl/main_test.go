package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEndpoints = `
glade: d33b3614-6d04-11e5-ba46-22000b92c6ec
campaign: 6b5ab960-7bbf-11e8-9450-0a6d4e044368
`

func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	base := []string{
		"xferctl",
		"--no-log",
		"--backend=fake",
		"--endpoints-file=" + filepath.Join(dir, "endpoints.yaml"),
		"--scratch-dir=" + filepath.Join(dir, "scratch"),
		"--db-path=" + filepath.Join(dir, "journal.db"),
	}

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append(base, args...), strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func newTestDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "endpoints.yaml"), []byte(testEndpoints), 0644)
	require.NoError(t, err)

	return dir
}

func TestRunEndpoints(t *testing.T) {
	dir := newTestDir(t)

	out, err := runCLI(t, dir, "endpoints", "--format=json")
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []map[string]string{
		{"name": "campaign", "uuid": "6b5ab960-7bbf-11e8-9450-0a6d4e044368"},
		{"name": "glade", "uuid": "d33b3614-6d04-11e5-ba46-22000b92c6ec"},
	}, got)
}

func TestRunTransfer(t *testing.T) {
	tests := map[string]struct {
		args   []string
		expErr bool
		expOut []string
	}{
		"A transfer with path lists should succeed.": {
			args:   []string{"transfer", "--src-ep=glade", "--dst-ep=campaign", "--src-paths=/a,/b", "--dst-paths=/x,/y"},
			expOut: []string{"Status:       succeeded", "Attempts:     1/3"},
		},
		"A transfer to an unknown endpoint should fail.": {
			args:   []string{"transfer", "--src-ep=glade", "--dst-ep=missing", "--src-paths=/a", "--dst-paths=/x"},
			expErr: true,
		},
		"A transfer without paths should fail.": {
			args:   []string{"transfer", "--src-ep=glade", "--dst-ep=campaign"},
			expErr: true,
		},
		"A transfer with zero attempts should fail.": {
			args:   []string{"transfer", "--src-ep=glade", "--dst-ep=campaign", "--src-paths=/a", "--dst-paths=/x", "--retry=0"},
			expErr: true,
		},
		"A transfer with an explicit retry limit should use it.": {
			args:   []string{"transfer", "--src-ep=glade", "--dst-ep=campaign", "--src-paths=/a", "--dst-paths=/x", "--retry=1"},
			expOut: []string{"Status:       succeeded", "Attempts:     1/1"},
		},
		"A transfer with paths and a batch file should fail.": {
			args:   []string{"transfer", "--src-ep=glade", "--dst-ep=campaign", "--src-paths=/a", "--dst-paths=/x", "--batch-file=/tmp/batch"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := newTestDir(t)

			out, err := runCLI(t, dir, test.args...)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, exp := range test.expOut {
				assert.Contains(t, out, exp)
			}
		})
	}
}

func TestRunTransferIsJournaled(t *testing.T) {
	dir := newTestDir(t)

	_, err := runCLI(t, dir, "transfer", "--src-ep=glade", "--dst-ep=campaign", "--src-paths=/a", "--dst-paths=/x", "--label=nightly")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "history", "--format=json")
	require.NoError(t, err)

	var runs []struct {
		Status              string `json:"status"`
		SourceEndpoint      string `json:"source_endpoint"`
		DestinationEndpoint string `json:"destination_endpoint"`
		Label               string `json:"label"`
		Attempts            int    `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "succeeded", runs[0].Status)
	assert.Equal(t, "glade", runs[0].SourceEndpoint)
	assert.Equal(t, "campaign", runs[0].DestinationEndpoint)
	assert.Equal(t, "nightly", runs[0].Label)
	assert.Equal(t, 1, runs[0].Attempts)
}

func TestRunTransferWritesMetrics(t *testing.T) {
	dir := newTestDir(t)
	metricsPath := filepath.Join(dir, "xferctl.prom")

	_, err := runCLI(t, dir, "--metrics-textfile="+metricsPath, "transfer", "--src-ep=glade", "--dst-ep=campaign", "--src-paths=/a", "--dst-paths=/x")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `xferctl_transfer_runs_total{status="succeeded"} 1`)
}

func TestRunSubmit(t *testing.T) {
	dir := newTestDir(t)

	out, err := runCLI(t, dir, "submit", "--src-ep=glade", "--dst-ep=campaign", "--src-path=/a", "--dst-path=/x", "--format=json")
	require.NoError(t, err)

	var task map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, "PENDING", task["status"])
	assert.NotEmpty(t, task["task_id"])
}

func TestRunInvalidCommand(t *testing.T) {
	dir := newTestDir(t)

	_, err := runCLI(t, dir, "does-not-exist")
	assert.Error(t, err)
}
