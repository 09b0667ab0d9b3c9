package crossframe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrFrameUnavailable is returned while a frame's breaker is open
var ErrFrameUnavailable = errors.New("frame unavailable")

// BreakerState is the state of one frame's breaker
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GuardSettings configures a Guard
type GuardSettings struct {
	// Failures is the number of consecutive transport failures that opens a frame's breaker
	Failures uint32
	// Cooldown is how long the breaker stays open before probing again
	Cooldown time.Duration
	// Probes is the number of calls admitted while half-open
	Probes uint32
}

// DefaultGuardSettings returns the settings used when none are given
func DefaultGuardSettings() GuardSettings {
	return GuardSettings{Failures: 5, Cooldown: 30 * time.Second, Probes: 1}
}

type frameBreaker struct {
	state      BreakerState
	generation uint64 // Bumped on every transition
	failures   uint32
	inflight   uint32
	openUntil  time.Time
}

// Guard is an Invoker that stops calling a frame after repeated transport
// failures. Errors raised by the remote handler do not count: the frame
// answered.
type Guard struct {
	next     Invoker
	settings GuardSettings
	now      func() time.Time
	logger   *zap.Logger

	mu     sync.Mutex
	frames map[int]*frameBreaker
}

// NewGuard wraps next. Zero fields in settings take their defaults.
func NewGuard(next Invoker, settings GuardSettings) *Guard {
	def := DefaultGuardSettings()
	if settings.Failures == 0 {
		settings.Failures = def.Failures
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = def.Cooldown
	}
	if settings.Probes == 0 {
		settings.Probes = def.Probes
	}
	return &Guard{
		next:     next,
		settings: settings,
		now:      time.Now,
		logger:   zap.NewNop(),
		frames:   make(map[int]*frameBreaker),
	}
}

// WithLogger sets the logger
func (g *Guard) WithLogger(logger *zap.Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithClock replaces time.Now
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// State reports the breaker state of frameID
func (g *Guard) State(frameID int) BreakerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current(frameID).state
}

// Invoke forwards to the wrapped Invoker unless frameID's breaker is open
func (g *Guard) Invoke(ctx context.Context, frameID int, action string, params any) (json.RawMessage, error) {
	generation, ok := g.admit(frameID)
	if !ok {
		return nil, fmt.Errorf("%w: frame %d", ErrFrameUnavailable, frameID)
	}
	raw, err := g.next.Invoke(ctx, frameID, action, params)
	g.record(frameID, generation, isTransportFailure(err))
	return raw, err
}

// admit returns the generation the call was admitted in
func (g *Guard) admit(frameID int) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := g.current(frameID)
	switch b.state {
	case BreakerOpen:
		return b.generation, false
	case BreakerHalfOpen:
		if b.inflight >= g.settings.Probes {
			return b.generation, false
		}
	}
	b.inflight++
	return b.generation, true
}

// record counts the outcome of a call. Calls admitted before the last
// transition are ignored.
func (g *Guard) record(frameID int, generation uint64, failed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := g.current(frameID)
	if b.generation != generation {
		return
	}
	b.inflight--
	if !failed {
		b.failures = 0
		if b.state == BreakerHalfOpen {
			g.transition(frameID, b, BreakerClosed)
		}
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= g.settings.Failures {
		b.openUntil = g.now().Add(g.settings.Cooldown)
		g.transition(frameID, b, BreakerOpen)
	}
}

// current must be called with g.mu held.
func (g *Guard) current(frameID int) *frameBreaker {
	b, ok := g.frames[frameID]
	if !ok {
		b = &frameBreaker{}
		g.frames[frameID] = b
	}
	if b.state == BreakerOpen && !g.now().Before(b.openUntil) {
		g.transition(frameID, b, BreakerHalfOpen)
	}
	return b
}

func (g *Guard) transition(frameID int, b *frameBreaker, to BreakerState) {
	if b.state == to {
		return
	}
	g.logger.Info("frame breaker state changed",
		zap.Int("frame_id", frameID),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to))
	b.state = to
	b.generation++
	b.failures = 0
	b.inflight = 0
}

func isTransportFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var remote *RemoteError
	return !errors.As(err, &remote)
}

var _ Invoker = (*Guard)(nil)
