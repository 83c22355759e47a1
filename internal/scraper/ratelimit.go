package scraper

import (
	"context"
	"sync"
	"time"
)

// RequestSpacing is the fixed minimum spacing between consecutive requests
// to the same upstream within one adapter's multi-request strategy. The
// policy is deliberately not exposed to callers.
const RequestSpacing = 400 * time.Millisecond

// Gate enforces a minimum interval between consecutive calls. Adapters
// that issue more than one upstream request per search take a Gate instead
// of sleeping inline, so the policy is testable without wall-clock waits.
type Gate interface {
	Wait(ctx context.Context)
}

// NewIntervalGate returns a Gate that spaces calls at least interval apart.
// The first call passes immediately.
func NewIntervalGate(interval time.Duration) Gate {
	return &intervalGate{interval: interval}
}

type intervalGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (g *intervalGate) Wait(ctx context.Context) {
	g.mu.Lock()
	now := time.Now()
	if g.last.IsZero() || !now.Before(g.last.Add(g.interval)) {
		g.last = now
		g.mu.Unlock()
		return
	}
	next := g.last.Add(g.interval)
	g.last = next
	g.mu.Unlock()

	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// NopGate never waits. Tests inject it to run multi-request strategies
// at full speed.
type NopGate struct{}

// Wait returns immediately.
func (NopGate) Wait(context.Context) {}
