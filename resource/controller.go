package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for distance matrices.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentTransfers is the maximum number of concurrent dataset
	// reads and writes. If 0, defaults to 1.
	MaxConcurrentTransfers int64

	// IOLimitBytesPerSec is the maximum IO throughput of transfers.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (memory, concurrency, IO).
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	transferSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentTransfers <= 0 {
		cfg.MaxConcurrentTransfers = 1
	}

	c := &Controller{
		cfg:         cfg,
		transferSem: semaphore.NewWeighted(cfg.MaxConcurrentTransfers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves memory without blocking.
// Returns false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireTransfer reserves a transfer slot. Blocks if all slots are busy.
func (c *Controller) AcquireTransfer(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.transferSem.Acquire(ctx, 1)
}

// TryAcquireTransfer reserves a transfer slot without blocking.
func (c *Controller) TryAcquireTransfer() bool {
	if c == nil {
		return true
	}
	return c.transferSem.TryAcquire(1)
}

// ReleaseTransfer releases a transfer slot.
func (c *Controller) ReleaseTransfer() {
	if c == nil {
		return
	}
	c.transferSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of throughput are waited for in chunks.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// ioChunk is the largest read or write that fits one limiter token bucket.
func (c *Controller) ioChunk(n int) int {
	if c == nil || c.ioLimiter == nil {
		return n
	}
	return min(n, c.ioLimiter.Burst())
}
