package main

import (
	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/event"
	"github.com/alswaife/lansync/internal/syncnet"
)

func newPushCmd(a *app) *cobra.Command {
	var bwLimitStr string

	cmd := &cobra.Command{
		Use:   "push <target-ip> <rel-path>...",
		Short: "Send selected files to a peer without replacing its tree",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPush(a, args[0], args[1:], bwLimitStr)
		},
	}
	cmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	return cmd
}

func runPush(a *app, targetIP string, paths []string, bwLimitStr string) error {
	bwLimit, err := a.resolveBWLimit(bwLimitStr)
	if err != nil {
		return err
	}

	a.startPresenter()
	defer a.stopPresenter()

	done := make(chan opResult, 1)
	client := syncnet.NewCompareClient(syncnet.ClientConfig{
		Root:           a.rootDir,
		Port:           a.cfg.Ports.Compare,
		ConnectTimeout: a.cfg.ConnectTimeout(),
		BytesPerSec:    bwLimit,
		Hooks:          a.transferHooks(event.TransferProgress, done),
		Stats:          a.stats,
	}, nil)

	client.SendSelectedFiles(targetIP, paths)
	res := <-done

	a.summary()
	if !res.ok {
		return &exitError{code: 1}
	}
	return nil
}
