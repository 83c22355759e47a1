package scraper_test

import (
	"context"
	"testing"
	"time"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
)

func TestIntervalGate_SpacesCalls(t *testing.T) {
	g := scraper.NewIntervalGate(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	g.Wait(ctx)
	g.Wait(ctx)
	g.Wait(ctx)
	elapsed := time.Since(start)

	if elapsed < 60*time.Millisecond {
		t.Errorf("three gated calls took %v, want at least 60ms of spacing", elapsed)
	}
}

func TestIntervalGate_FirstCallPassesImmediately(t *testing.T) {
	g := scraper.NewIntervalGate(time.Minute)

	start := time.Now()
	g.Wait(context.Background())
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait took %v, want immediate", elapsed)
	}
}

func TestIntervalGate_CancelledContextUnblocks(t *testing.T) {
	g := scraper.NewIntervalGate(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	g.Wait(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		g.Wait(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
}

func TestNopGate_NeverWaits(t *testing.T) {
	start := time.Now()
	for i := 0; i < 100; i++ {
		scraper.NopGate{}.Wait(context.Background())
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("100 NopGate waits took %v, want effectively zero", elapsed)
	}
}
