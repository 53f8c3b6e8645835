// Package event defines the typed progress events flowing from the sync
// components to the CLI presenter.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ArchiveProgress Type = iota + 1
	TransferProgress
	ExtractProgress
	TransferComplete
	TransferFailed
	CompareComplete
	PeerFound
	ServerStarted
	ServerStopped
)

var typeNames = [...]string{
	ArchiveProgress:  "ArchiveProgress",
	TransferProgress: "TransferProgress",
	ExtractProgress:  "ExtractProgress",
	TransferComplete: "TransferComplete",
	TransferFailed:   "TransferFailed",
	CompareComplete:  "CompareComplete",
	PeerFound:        "PeerFound",
	ServerStarted:    "ServerStarted",
	ServerStopped:    "ServerStopped",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from a sync operation.
type Event struct {
	Type      Type
	Timestamp time.Time
	Percent   float64 // progress events
	Peer      string  // peer address or hostname, when known
	Message   string  // completion/failure detail
	Entries   int     // diff entry count (CompareComplete)
}
