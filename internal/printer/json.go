package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/xferctl/internal/model"
)

// JSONPrinter prints transfer information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type endpointOutput struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

type taskOutput struct {
	ID          string     `json:"task_id"`
	Status      string     `json:"status"`
	Label       string     `json:"label,omitempty"`
	RequestedAt *time.Time `json:"request_time,omitempty"`
	CompletedAt *time.Time `json:"completion_time,omitempty"`
}

type runOutput struct {
	ID                  string          `json:"run_id"`
	SourceEndpoint      string          `json:"source_endpoint"`
	DestinationEndpoint string          `json:"destination_endpoint"`
	ManifestPath        string          `json:"manifest_path"`
	Label               string          `json:"label,omitempty"`
	Status              string          `json:"status"`
	Attempts            int             `json:"attempts"`
	RetryLimit          int             `json:"retry_limit"`
	Error               string          `json:"error,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	FinishedAt          *time.Time      `json:"finished_at"`
	TaskAttempts        []attemptOutput `json:"task_attempts,omitempty"`
}

type attemptOutput struct {
	Number      int        `json:"number"`
	TaskID      string     `json:"task_id"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  *time.Time `json:"finished_at"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintEndpoints prints the registered endpoints in JSON format.
func (j *JSONPrinter) PrintEndpoints(endpoints []model.Endpoint) error {
	items := make([]endpointOutput, len(endpoints))
	for i, e := range endpoints {
		items[i] = endpointOutput{Name: e.Name, UUID: e.UUID}
	}
	return j.encode(items)
}

// PrintListing prints directory entries in JSON format.
func (j *JSONPrinter) PrintListing(entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	return j.encode(entries)
}

// PrintTasks prints transfer tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	items := make([]taskOutput, len(tasks))
	for i, t := range tasks {
		items[i] = newTaskOutput(t)
	}
	return j.encode(items)
}

// PrintTask prints a transfer task in JSON format.
func (j *JSONPrinter) PrintTask(t model.Task) error {
	return j.encode(newTaskOutput(t))
}

// PrintHistory prints the transfer runs in JSON format.
func (j *JSONPrinter) PrintHistory(runs []model.TransferRun) error {
	items := make([]runOutput, len(runs))
	for i, r := range runs {
		items[i] = newRunOutput(r, nil)
	}
	return j.encode(items)
}

// PrintRun prints a transfer run with its attempts in JSON format.
func (j *JSONPrinter) PrintRun(r model.TransferRun, attempts []model.TransferAttempt) error {
	return j.encode(newRunOutput(r, attempts))
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTaskOutput(t model.Task) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Status:      string(t.Status),
		Label:       t.Label,
		RequestedAt: utcPtr(t.RequestedAt),
		CompletedAt: utcPtr(t.CompletedAt),
	}
}

func newRunOutput(r model.TransferRun, attempts []model.TransferAttempt) runOutput {
	out := runOutput{
		ID:                  r.ID,
		SourceEndpoint:      r.SourceEndpoint,
		DestinationEndpoint: r.DestinationEndpoint,
		ManifestPath:        r.ManifestPath,
		Label:               r.Label,
		Status:              string(r.Status),
		Attempts:            r.Attempts,
		RetryLimit:          r.RetryLimit,
		Error:               r.Error,
		CreatedAt:           r.CreatedAt.UTC(),
		FinishedAt:          utcPtr(r.FinishedAt),
	}

	for _, a := range attempts {
		out.TaskAttempts = append(out.TaskAttempts, attemptOutput{
			Number:      a.Number,
			TaskID:      a.TaskID,
			Status:      string(a.Status),
			SubmittedAt: a.SubmittedAt.UTC(),
			FinishedAt:  utcPtr(a.FinishedAt),
		})
	}

	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
