package printer

import "github.com/slok/xferctl/internal/model"

// Printer knows how to print transfer information in different formats.
type Printer interface {
	PrintEndpoints(endpoints []model.Endpoint) error
	PrintListing(entries []string) error
	PrintTasks(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintHistory(runs []model.TransferRun) error
	PrintRun(run model.TransferRun, attempts []model.TransferAttempt) error
	PrintMessage(msg string) error
}
