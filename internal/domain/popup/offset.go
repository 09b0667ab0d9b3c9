package popup

import (
	"context"
	"sync"
	"time"

	"github.com/seth-js/yomichan-ru/internal/frameoffset"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
	"go.uber.org/zap"
)

// DefaultOffsetTTL is how long a looked-up frame offset is trusted
const DefaultOffsetTTL = time.Second

// offsetCache keeps the frame offset of a proxy. At most one lookup runs
// at a time; pending is closed when it lands.
type offsetCache struct {
	source   frameoffset.Source
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	notFound func()

	mu        sync.Mutex
	offset    types.Offset  // Protected by mu
	updatedAt *time.Time    // Protected by mu
	pending   chan struct{} // Protected by mu
}

func newOffsetCache(source frameoffset.Source) *offsetCache {
	return &offsetCache{
		source:   source,
		ttl:      DefaultOffsetTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
		notFound: func() {},
	}
}

// refresh makes sure a lookup is running when the cached offset has expired.
// Only the very first call waits for the result.
func (c *offsetCache) refresh(ctx context.Context) error {
	now := c.now()

	c.mu.Lock()
	firstRun := c.updatedAt == nil
	expired := firstRun || now.Sub(*c.updatedAt) > c.ttl
	pending := c.pending
	if pending == nil && !expired {
		c.mu.Unlock()
		return nil
	}
	if pending == nil {
		pending = make(chan struct{})
		c.pending = pending
		go c.lookup(context.WithoutCancel(ctx), now, pending)
	}
	c.mu.Unlock()

	if !firstRun {
		return nil
	}
	select {
	case <-pending:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *offsetCache) lookup(ctx context.Context, started time.Time, done chan struct{}) {
	defer close(done)

	offset, err := c.source.Offset(ctx)

	c.mu.Lock()
	c.pending = nil
	switch {
	case err != nil:
		c.mu.Unlock()
		c.metrics.RecordOffsetRefresh(monitoring.OffsetError)
		c.logger.Error("frame offset lookup failed", zap.Error(err))

	case offset == nil:
		c.offset = types.Offset{}
		c.mu.Unlock()
		c.metrics.RecordOffsetRefresh(monitoring.OffsetNotFound)
		c.notFound()

	default:
		c.offset = *offset
		c.updatedAt = &started
		c.mu.Unlock()
		c.metrics.RecordOffsetRefresh(monitoring.OffsetFound)
	}
}

// apply translates (x, y) by the cached offset without refreshing it
func (c *offsetCache) apply(x, y float64) (float64, float64) {
	c.mu.Lock()
	offset := c.offset
	c.mu.Unlock()
	return offset.Apply(x, y)
}
