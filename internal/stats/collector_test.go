package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.AddBytesSent(100)
	c.AddBytesSent(50)
	c.AddBytesReceived(200)
	c.AddFilesArchived(3)
	c.AddFilesExtracted(2)
	c.AddTransferOK()
	c.AddTransferFailed()
	c.AddTransferFailed()
	c.AddPeersFound(4)

	s := c.Snapshot()
	assert.Equal(t, int64(150), s.BytesSent)
	assert.Equal(t, int64(200), s.BytesReceived)
	assert.Equal(t, int64(3), s.FilesArchived)
	assert.Equal(t, int64(2), s.FilesExtracted)
	assert.Equal(t, int64(1), s.TransfersOK)
	assert.Equal(t, int64(2), s.TransfersFailed)
	assert.Equal(t, int64(4), s.PeersFound)
	assert.GreaterOrEqual(t, s.Elapsed.Nanoseconds(), int64(0))
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddBytesSent(1)
				c.AddTransferOK()
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(1000), s.BytesSent)
	assert.Equal(t, int64(1000), s.TransfersOK)
}

func TestSnapshotString(t *testing.T) {
	c := NewCollector()
	c.AddBytesSent(2048)
	c.AddTransferOK()

	s := c.Snapshot().String()
	assert.Contains(t, s, "sent=2.0 KiB")
	assert.Contains(t, s, "ok=1")
	assert.Contains(t, s, "failed=0")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "1.0 MiB", FormatBytes(1024*1024))
	assert.Equal(t, "1.0 GiB", FormatBytes(1024*1024*1024))
}
