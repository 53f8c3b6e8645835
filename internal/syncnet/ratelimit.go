package syncnet

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// newBWLimiter creates a rate.Limiter that caps send throughput to
// bytesPerSec. The burst allows natural chunk-sized writes through
// without unnecessary blocking.
func newBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// rateLimitedWriter wraps an io.Writer and enforces a shared rate limit.
type rateLimitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedWriter(ctx context.Context, w io.Writer, limiter *rate.Limiter) *rateLimitedWriter {
	return &rateLimitedWriter{w: w, limiter: limiter, ctx: ctx}
}

func (rw *rateLimitedWriter) Write(p []byte) (int, error) {
	if err := rw.limiter.WaitN(rw.ctx, len(p)); err != nil {
		return 0, err
	}
	return rw.w.Write(p)
}
