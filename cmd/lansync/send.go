package main

import (
	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/config"
	"github.com/alswaife/lansync/internal/event"
	"github.com/alswaife/lansync/internal/syncnet"
)

func newSendCmd(a *app) *cobra.Command {
	var bwLimitStr string

	cmd := &cobra.Command{
		Use:   "send <target-ip>",
		Short: "Push the full data tree to a peer, replacing its copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSend(a, args[0], bwLimitStr)
		},
	}
	cmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	return cmd
}

func runSend(a *app, targetIP, bwLimitStr string) error {
	bwLimit, err := a.resolveBWLimit(bwLimitStr)
	if err != nil {
		return err
	}

	a.startPresenter()
	defer a.stopPresenter()

	done := make(chan opResult, 1)
	client := syncnet.NewSyncClient(syncnet.ClientConfig{
		Root:           a.rootDir,
		Port:           a.cfg.Ports.Sync,
		ConnectTimeout: a.cfg.ConnectTimeout(),
		BytesPerSec:    bwLimit,
		Hooks:          a.transferHooks(event.TransferProgress, done),
		Stats:          a.stats,
	})

	client.SendData(targetIP)
	res := <-done

	a.summary()
	if !res.ok {
		return &exitError{code: 1}
	}
	return nil
}

// resolveBWLimit parses the flag value, falling back to the config file.
func (a *app) resolveBWLimit(flagValue string) (int64, error) {
	s := flagValue
	if s == "" {
		s = a.cfg.BWLimit
	}
	if s == "" {
		return 0, nil
	}
	return config.ParseSize(s)
}
