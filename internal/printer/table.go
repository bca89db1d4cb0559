package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/xferctl/internal/model"
)

// TablePrinter prints transfer information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

func (t *TablePrinter) table() *tabwriter.Writer {
	return tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
}

// PrintEndpoints prints the registered endpoints.
func (t *TablePrinter) PrintEndpoints(endpoints []model.Endpoint) error {
	if len(endpoints) == 0 {
		return nil
	}

	tw := t.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tUUID")
	for _, e := range endpoints {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.UUID)
	}

	return nil
}

// PrintListing prints directory entries, one per line.
func (t *TablePrinter) PrintListing(entries []string) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(t.writer, e); err != nil {
			return err
		}
	}
	return nil
}

// PrintTasks prints transfer tasks.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := t.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "TASK ID\tSTATUS\tLABEL\tREQUESTED")
	for _, tk := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tk.ID, tk.Status, orDash(tk.Label), timeAgoOrDash(tk.RequestedAt))
	}

	return nil
}

// PrintTask prints a single transfer task.
func (t *TablePrinter) PrintTask(tk model.Task) error {
	fmt.Fprintf(t.writer, "Task ID:    %s\n", tk.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", tk.Status)
	if tk.Label != "" {
		fmt.Fprintf(t.writer, "Label:      %s\n", tk.Label)
	}
	if tk.RequestedAt != nil {
		fmt.Fprintf(t.writer, "Requested:  %s\n", FormatTimestamp(*tk.RequestedAt))
	}
	if tk.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:  %s\n", FormatTimestamp(*tk.CompletedAt))
	}

	return nil
}

// PrintHistory prints the transfer runs.
func (t *TablePrinter) PrintHistory(runs []model.TransferRun) error {
	if len(runs) == 0 {
		return nil
	}

	tw := t.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "RUN ID\tSOURCE\tDESTINATION\tSTATUS\tATTEMPTS\tDURATION\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.ID,
			r.SourceEndpoint,
			r.DestinationEndpoint,
			r.Status,
			r.Attempts,
			r.RetryLimit,
			runDuration(r),
			TimeAgo(r.CreatedAt),
		)
	}

	return nil
}

// PrintRun prints a transfer run with its attempts.
func (t *TablePrinter) PrintRun(r model.TransferRun, attempts []model.TransferAttempt) error {
	fmt.Fprintf(t.writer, "Run ID:       %s\n", r.ID)
	fmt.Fprintf(t.writer, "Source:       %s\n", r.SourceEndpoint)
	fmt.Fprintf(t.writer, "Destination:  %s\n", r.DestinationEndpoint)
	fmt.Fprintf(t.writer, "Manifest:     %s\n", r.ManifestPath)
	if r.Label != "" {
		fmt.Fprintf(t.writer, "Label:        %s\n", r.Label)
	}
	fmt.Fprintf(t.writer, "Status:       %s\n", r.Status)
	fmt.Fprintf(t.writer, "Attempts:     %d/%d\n", r.Attempts, r.RetryLimit)
	fmt.Fprintf(t.writer, "Created:      %s\n", FormatTimestamp(r.CreatedAt))
	if r.FinishedAt != nil {
		fmt.Fprintf(t.writer, "Finished:     %s\n", FormatTimestamp(*r.FinishedAt))
	}
	if r.Error != "" {
		fmt.Fprintf(t.writer, "Error:        %s\n", r.Error)
	}

	if len(attempts) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := t.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "ATTEMPT\tTASK ID\tSTATUS\tSUBMITTED")
	for _, a := range attempts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.Number, a.TaskID, a.Status, FormatTimestamp(a.SubmittedAt))
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runDuration(r model.TransferRun) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return FormatDuration(r.FinishedAt.Sub(r.CreatedAt))
}
