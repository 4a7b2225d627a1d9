package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with rate limiting.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{
		ctx: ctx,
		w:   w,
		rc:  rc,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p[:w.rc.ioChunk(len(p))]
		if err := w.rc.AcquireIO(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}

// RateLimitedReader wraps an io.Reader with rate limiting.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		ctx: ctx,
		r:   r,
		rc:  rc,
	}
}

// Read waits for at most one bucket of tokens, then reads that many bytes.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	p = p[:r.rc.ioChunk(len(p))]
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
