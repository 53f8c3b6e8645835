// Package stats tracks transfer counters shared between servers, clients,
// and the CLI summary line.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks sync operation statistics using lock-free atomic
// counters. One Collector is shared by all components of a CLI invocation.
type Collector struct {
	bytesSent       atomic.Int64
	bytesReceived   atomic.Int64
	filesArchived   atomic.Int64
	filesExtracted  atomic.Int64
	transfersOK     atomic.Int64
	transfersFailed atomic.Int64
	peersFound      atomic.Int64
	startTime       time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddBytesSent(n int64)      { c.bytesSent.Add(n) }
func (c *Collector) AddBytesReceived(n int64)  { c.bytesReceived.Add(n) }
func (c *Collector) AddFilesArchived(n int64)  { c.filesArchived.Add(n) }
func (c *Collector) AddFilesExtracted(n int64) { c.filesExtracted.Add(n) }
func (c *Collector) AddTransferOK()            { c.transfersOK.Add(1) }
func (c *Collector) AddTransferFailed()        { c.transfersFailed.Add(1) }
func (c *Collector) AddPeersFound(n int64)     { c.peersFound.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesSent       int64
	BytesReceived   int64
	FilesArchived   int64
	FilesExtracted  int64
	TransfersOK     int64
	TransfersFailed int64
	PeersFound      int64
	Elapsed         time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		BytesSent:       c.bytesSent.Load(),
		BytesReceived:   c.bytesReceived.Load(),
		FilesArchived:   c.filesArchived.Load(),
		FilesExtracted:  c.filesExtracted.Load(),
		TransfersOK:     c.transfersOK.Load(),
		TransfersFailed: c.transfersFailed.Load(),
		PeersFound:      c.peersFound.Load(),
		Elapsed:         time.Since(c.startTime),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"sent=%s received=%s archived=%d extracted=%d ok=%d failed=%d",
		FormatBytes(s.BytesSent), FormatBytes(s.BytesReceived),
		s.FilesArchived, s.FilesExtracted, s.TransfersOK, s.TransfersFailed,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
