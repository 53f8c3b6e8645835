package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/discovery"
)

func newDiscoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Broadcast once and list peers answering on the LAN",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDiscover(a)
		},
	}
}

func runDiscover(a *app) error {
	peers, err := discovery.Discover(discovery.ResponderConfig{
		Port:   a.cfg.Ports.Discovery,
		Token:  a.cfg.Discovery.Token,
		AppTag: a.cfg.Discovery.AppTag,
	}, a.cfg.DiscoverTimeout())
	if err != nil {
		return err
	}
	a.stats.AddPeersFound(int64(len(peers)))

	if len(peers) == 0 {
		fmt.Fprintln(os.Stderr, "no peers found")
		return nil
	}
	for _, p := range peers {
		fmt.Fprintf(os.Stdout, "%s\t%s\n", p.IP, p.Hostname)
	}
	return nil
}
