// Command lansync synchronizes a local data tree with another
// installation on the same network: full-tree push, manifest compare with
// selective push, and UDP peer discovery.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/alswaife/lansync/internal/config"
	"github.com/alswaife/lansync/internal/event"
	"github.com/alswaife/lansync/internal/stats"
	"github.com/alswaife/lansync/internal/syncnet"
	"github.com/alswaife/lansync/internal/ui"
)

var version = "dev"

var timeNow = time.Now

func main() {
	os.Exit(run())
}

func run() int {
	a := &app{}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// app carries the state shared by all subcommands: resolved config, the
// stats collector, and the event channel feeding the presenter.
type app struct {
	cfg     config.Config
	rootDir string
	verbose bool
	quiet   bool

	stats  *stats.Collector
	events chan event.Event
	wg     sync.WaitGroup
}

func newRootCmd(a *app) *cobra.Command {
	var showVersion bool

	cmd := &cobra.Command{
		Use:           "lansync",
		Short:         "Synchronize the local data tree with a peer on the LAN",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "lansync %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	cmd.PersistentFlags().StringVar(&a.rootDir, "root", "", "data directory to synchronize (default: config, then ~/Documents/alswaife)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")

	cmd.AddCommand(
		newServeCmd(a),
		newSendCmd(a),
		newCompareCmd(a),
		newPushCmd(a),
		newDiscoverCmd(a),
		newScanCmd(a),
		newDocsCmd(),
	)
	return cmd
}

// setup loads the optional config file, resolves the sync root, and
// configures logging. Runs before every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if a.verbose {
		logLevel = slog.LevelDebug
	} else if !a.quiet {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
		cfg = config.Default()
	}
	a.cfg = cfg

	if !cmd.Flags().Changed("root") || a.rootDir == "" {
		a.rootDir = cfg.Root
	}
	if a.rootDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		a.rootDir = filepath.Join(home, "Documents", "alswaife")
	}

	a.stats = stats.NewCollector()
	return nil
}

// startPresenter spins up the event channel and presenter goroutine.
func (a *app) startPresenter() {
	a.events = make(chan event.Event, 64)
	presenter := ui.NewPresenter(ui.Config{
		Writer: os.Stderr,
		IsTTY:  ui.IsTTY(os.Stderr.Fd()),
		Quiet:  a.quiet,
	})
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		presenter.Run(a.events)
	}()
}

// stopPresenter closes the event channel and waits for the presenter to
// drain it.
func (a *app) stopPresenter() {
	close(a.events)
	a.wg.Wait()
}

// emit sends an event to the presenter, stamping the time.
func (a *app) emit(ev event.Event) {
	ev.Timestamp = timeNow()
	a.events <- ev
}

// opResult is a completed client operation, delivered once per operation.
type opResult struct {
	ok      bool
	message string
}

// transferHooks adapts syncnet callbacks into presenter events plus a
// one-shot completion result the command can block on.
func (a *app) transferHooks(progressType event.Type, done chan<- opResult) syncnet.Hooks {
	return syncnet.Hooks{
		OnProgress: func(percent float64) {
			a.emit(event.Event{Type: progressType, Percent: percent})
		},
		OnComplete: func(success bool, message string) {
			a.emit(event.Event{Type: event.TransferComplete, Message: message})
			done <- opResult{ok: success, message: message}
		},
		OnError: func(message string) {
			a.emit(event.Event{Type: event.TransferFailed, Message: message})
			done <- opResult{ok: false, message: message}
		},
	}
}

// summary prints the stats line unless quiet.
func (a *app) summary() {
	if a.quiet {
		return
	}
	fmt.Fprintln(os.Stderr, a.stats.Snapshot())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
