// Package lib provides a Go SDK to orchestrate bulk file transfers between
// remote endpoints without shelling out to the xferctl CLI.
//
// # Quick Start
//
// Create a client with the endpoint names you want to use and run a transfer:
//
//	client, err := lib.New(ctx, lib.Config{
//	    Endpoints: map[string]string{
//	        "glade":    "d33b3614-6d04-11e5-ba46-22000b92c6ec",
//	        "campaign": "6b5ab960-7bbf-11e8-9450-0a6d4e044368",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.Transfer(ctx, lib.TransferOpts{
//	    SourceEndpoint:      "glade",
//	    DestinationEndpoint: "campaign",
//	    SourcePaths:         []string{"/glade/run/out.nc"},
//	    DestinationPaths:    []string{"/campaign/run/out.nc"},
//	})
//
// # Transfers
//
// [Client.Transfer] waits until the transfer service has capacity, submits a
// single batched task for all the paths, waits for it and resubmits it when it
// fails, up to [TransferOpts].RetryLimit attempts. Each transfer is recorded on
// the journal database.
//
// [Client.SubmitAsync] and [Client.AwaitCompletion] are the lower level
// submit and wait steps, they don't retry nor journal.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrUnknownEndpoint]: The endpoint name is not registered.
//   - [ErrEndpointNotActivated]: The endpoint needs activation on the transfer service.
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrNotValid]: Invalid input.
//
// # Testing
//
// Use [BackendFake] and temporary paths to write tests without a transfer
// service account:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    Endpoints:  endpoints,
//	    DBPath:     filepath.Join(t.TempDir(), "test.db"),
//	    ScratchDir: t.TempDir(),
//	    Backend:    lib.BackendFake,
//	})
//	defer client.Close()
package lib
