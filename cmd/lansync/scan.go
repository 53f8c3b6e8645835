package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/manifest"
	"github.com/alswaife/lansync/internal/stats"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Print the manifest of the local data tree",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runScan(a)
		},
	}
}

func runScan(a *app) error {
	m, err := manifest.Scan(a.rootDir)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSIZE\tMODIFIED\tHASH")
	for _, p := range paths {
		rec := m[p]
		hash := rec.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		if hash == "" {
			hash = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			rec.Path, stats.FormatBytes(rec.Size),
			time.Unix(rec.ModTime, 0).Format("2006-01-02 15:04:05"), hash)
	}
	return tw.Flush()
}
