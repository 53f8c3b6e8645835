package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alswaife/lansync/internal/event"
)

func present(cfg Config, events ...event.Event) string {
	var buf bytes.Buffer
	cfg.Writer = &buf
	p := NewPresenter(cfg)

	ch := make(chan event.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	p.Run(ch)
	return buf.String()
}

func TestPresenterTTYProgress(t *testing.T) {
	out := present(Config{IsTTY: true},
		event.Event{Type: event.TransferProgress, Percent: 10},
		event.Event{Type: event.TransferProgress, Percent: 55},
		event.Event{Type: event.TransferComplete, Message: "data sent to 10.0.0.2"},
	)

	assert.Contains(t, out, "\rprogress:  10%")
	assert.Contains(t, out, "\rprogress:  55%")
	assert.Contains(t, out, "done: data sent to 10.0.0.2\n")
}

func TestPresenterNonTTYStepDedupe(t *testing.T) {
	out := present(Config{},
		event.Event{Type: event.TransferProgress, Percent: 11},
		event.Event{Type: event.TransferProgress, Percent: 14},
		event.Event{Type: event.TransferProgress, Percent: 19.9},
		event.Event{Type: event.TransferProgress, Percent: 20},
		event.Event{Type: event.TransferProgress, Percent: 29},
	)

	// Two distinct 10% steps, each printed once.
	assert.Equal(t, 1, strings.Count(out, "progress: 10%\n"))
	assert.Equal(t, 1, strings.Count(out, "progress: 20%\n"))
	assert.Equal(t, 2, strings.Count(out, "progress:"))
}

func TestPresenterQuietShowsOnlyFailures(t *testing.T) {
	out := present(Config{Quiet: true},
		event.Event{Type: event.TransferProgress, Percent: 50},
		event.Event{Type: event.TransferComplete, Message: "done already"},
		event.Event{Type: event.TransferFailed, Message: "peer rejected the data"},
	)

	assert.NotContains(t, out, "progress")
	assert.NotContains(t, out, "done already")
	assert.Contains(t, out, "error: peer rejected the data\n")
}

func TestPresenterEventLines(t *testing.T) {
	out := present(Config{},
		event.Event{Type: event.ServerStarted, Message: "sync on 10.0.0.1:5555"},
		event.Event{Type: event.PeerFound, Peer: "10.0.0.2", Message: "office-pc"},
		event.Event{Type: event.CompareComplete, Peer: "10.0.0.2", Entries: 3},
		event.Event{Type: event.TransferFailed, Message: "could not connect"},
		event.Event{Type: event.ServerStopped},
	)

	assert.Contains(t, out, "listening: sync on 10.0.0.1:5555\n")
	assert.Contains(t, out, "peer: 10.0.0.2 (office-pc)\n")
	assert.Contains(t, out, "compare: 3 difference(s) with 10.0.0.2\n")
	assert.Contains(t, out, "error: could not connect\n")
	assert.Contains(t, out, "stopped\n")
}

func TestPresenterEndsOpenProgressLine(t *testing.T) {
	out := present(Config{IsTTY: true},
		event.Event{Type: event.ArchiveProgress, Percent: 40},
	)

	// The dangling in-place line is terminated when the channel closes.
	assert.True(t, strings.HasSuffix(out, "\n"))
}
