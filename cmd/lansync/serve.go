package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/discovery"
	"github.com/alswaife/lansync/internal/event"
	"github.com/alswaife/lansync/internal/syncnet"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Receive data from peers (sync, compare, and discovery)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(a)
		},
	}
}

func runServe(a *app) error {
	a.startPresenter()
	defer a.stopPresenter()

	hooks := syncnet.Hooks{
		OnProgress: func(percent float64) {
			a.emit(event.Event{Type: event.TransferProgress, Percent: percent})
		},
		OnComplete: func(_ bool, message string) {
			a.emit(event.Event{Type: event.TransferComplete, Message: message})
		},
		OnError: func(message string) {
			a.emit(event.Event{Type: event.TransferFailed, Message: message})
		},
	}

	syncSrv := syncnet.NewSyncServer(syncnet.ServerConfig{
		Root: a.rootDir,
		Port: a.cfg.Ports.Sync,
		Discovery: discovery.ResponderConfig{
			Port:   a.cfg.Ports.Discovery,
			Token:  a.cfg.Discovery.Token,
			AppTag: a.cfg.Discovery.AppTag,
		},
		Hooks: hooks,
		Stats: a.stats,
	})
	compareSrv := syncnet.NewCompareServer(syncnet.ServerConfig{
		Root:  a.rootDir,
		Port:  a.cfg.Ports.Compare,
		Hooks: hooks,
		Stats: a.stats,
	})

	if err := syncSrv.Start(); err != nil {
		return err
	}
	defer syncSrv.Stop()

	if err := compareSrv.Start(); err != nil {
		return err
	}
	defer compareSrv.Stop()

	a.emit(event.Event{
		Type: event.ServerStarted,
		Message: fmt.Sprintf("%s (sync :%d, compare :%d)",
			discovery.LocalIP(), syncSrv.Port(), compareSrv.Port()),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	a.emit(event.Event{Type: event.ServerStopped})
	fmt.Fprintln(os.Stderr, a.stats.Snapshot())
	return nil
}
