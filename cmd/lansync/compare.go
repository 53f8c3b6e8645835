package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/event"
	"github.com/alswaife/lansync/internal/manifest"
	"github.com/alswaife/lansync/internal/stats"
	"github.com/alswaife/lansync/internal/syncnet"
)

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <target-ip>",
		Short: "Fetch a peer's manifest and list the differences",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCompare(a, args[0])
		},
	}
}

func runCompare(a *app, targetIP string) error {
	a.startPresenter()
	defer a.stopPresenter()

	done := make(chan opResult, 1)
	var entries []manifest.DiffEntry

	client := syncnet.NewCompareClient(syncnet.ClientConfig{
		Root:           a.rootDir,
		Port:           a.cfg.Ports.Compare,
		ConnectTimeout: a.cfg.ConnectTimeout(),
		Hooks: syncnet.Hooks{
			OnError: func(message string) {
				a.emit(event.Event{Type: event.TransferFailed, Message: message})
				done <- opResult{ok: false, message: message}
			},
		},
		Stats: a.stats,
	}, func(diff []manifest.DiffEntry, peerIP string) {
		entries = diff
		a.emit(event.Event{Type: event.CompareComplete, Entries: len(diff), Peer: peerIP})
		done <- opResult{ok: true}
	})

	client.GetRemoteFilesInfo(targetIP)
	res := <-done
	if !res.ok {
		return &exitError{code: 1}
	}

	printDiff(os.Stdout, entries)
	return nil
}

func printDiff(w *os.File, entries []manifest.DiffEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "trees are identical")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tLOCAL\tREMOTE\tLOCAL MTIME\tREMOTE MTIME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Path, e.Status,
			sizeCell(e.Status, manifest.StatusRemoteOnly, e.LocalSize),
			sizeCell(e.Status, manifest.StatusLocalOnly, e.RemoteSize),
			timeCell(e.Status, manifest.StatusRemoteOnly, e.LocalModTime),
			timeCell(e.Status, manifest.StatusLocalOnly, e.RemoteModTime),
		)
	}
	tw.Flush()
}

// sizeCell renders a size, or "-" for the side that lacks the path.
func sizeCell(status, absent manifest.Status, size int64) string {
	if status == absent {
		return "-"
	}
	return stats.FormatBytes(size)
}

func timeCell(status, absent manifest.Status, unixSecs int64) string {
	if status == absent {
		return "-"
	}
	return time.Unix(unixSecs, 0).Format("2006-01-02 15:04:05")
}
