// Package ui renders sync progress and results for the command line.
package ui

import (
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/alswaife/lansync/internal/event"
)

// IsTTY reports whether the given file descriptor refers to a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// Presenter renders events as they arrive: an in-place percent line on a
// terminal, one line per event otherwise.
type Presenter struct {
	w         io.Writer
	isTTY     bool
	quiet     bool
	inlinePct bool // an unfinished progress line is on screen
	lastStep  int  // last 10% step printed in non-TTY mode
}

// Config configures a Presenter.
type Config struct {
	Writer io.Writer
	IsTTY  bool
	Quiet  bool
}

// NewPresenter creates a presenter.
func NewPresenter(cfg Config) *Presenter {
	return &Presenter{w: cfg.Writer, isTTY: cfg.IsTTY, quiet: cfg.Quiet}
}

// Run consumes events until the channel closes.
func (p *Presenter) Run(events <-chan event.Event) {
	for ev := range events {
		p.handle(ev)
	}
	p.endProgressLine()
}

func (p *Presenter) handle(ev event.Event) {
	if p.quiet && ev.Type != event.TransferFailed {
		return
	}

	switch ev.Type {
	case event.ArchiveProgress, event.TransferProgress, event.ExtractProgress:
		p.printProgress(ev.Percent)
	case event.TransferComplete:
		p.endProgressLine()
		fmt.Fprintf(p.w, "done: %s\n", ev.Message)
	case event.TransferFailed:
		p.endProgressLine()
		fmt.Fprintf(p.w, "error: %s\n", ev.Message)
	case event.CompareComplete:
		p.endProgressLine()
		fmt.Fprintf(p.w, "compare: %d difference(s) with %s\n", ev.Entries, ev.Peer)
	case event.PeerFound:
		fmt.Fprintf(p.w, "peer: %s (%s)\n", ev.Peer, ev.Message)
	case event.ServerStarted:
		fmt.Fprintf(p.w, "listening: %s\n", ev.Message)
	case event.ServerStopped:
		fmt.Fprintln(p.w, "stopped")
	}
}

func (p *Presenter) printProgress(percent float64) {
	if p.isTTY {
		fmt.Fprintf(p.w, "\rprogress: %3.0f%%", percent)
		p.inlinePct = true
		return
	}
	// Non-TTY: log coarse steps only to keep output greppable.
	step := int(percent) / 10 * 10
	if step == p.lastStep {
		return
	}
	p.lastStep = step
	fmt.Fprintf(p.w, "progress: %d%%\n", step)
}

func (p *Presenter) endProgressLine() {
	p.lastStep = 0
	if p.inlinePct {
		fmt.Fprintln(p.w)
		p.inlinePct = false
	}
}
