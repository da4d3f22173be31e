package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/catering/infra/logger"
)

func TestGate_IncrementDecrement(t *testing.T) {
	g := NewGate(time.Millisecond, logger.NopLogger{})
	g.Increment("AC1")
	g.Increment("AC1")
	g.Increment("AC2")
	assert.Equal(t, 2, g.Count("AC1"))
	assert.Equal(t, 1, g.Count("AC2"))
	g.Decrement("AC1")
	assert.Equal(t, 1, g.Count("AC1"))
}

func TestGate_DecrementFloorsAtZero(t *testing.T) {
	g := NewGate(time.Millisecond, logger.NopLogger{})
	g.Decrement("AC1")
	g.Increment("AC1")
	g.Decrement("AC1")
	g.Decrement("AC1")
	assert.Equal(t, 0, g.Count("AC1"))
	assert.Empty(t, g.Snapshot(), "idle flights are evicted")
}

func TestGate_WaitUntilBelowReturnsImmediately(t *testing.T) {
	g := NewGate(time.Hour, logger.NopLogger{})
	g.Increment("AC1")
	require.NoError(t, g.WaitUntilBelow(context.Background(), "AC1", 2))
}

func TestGate_WaitUntilBelowWakesAfterDecrement(t *testing.T) {
	g := NewGate(5*time.Millisecond, logger.NopLogger{})
	g.Increment("AC1")
	g.Increment("AC1")

	done := make(chan error, 1)
	go func() { done <- g.WaitUntilBelow(context.Background(), "AC1", 2) }()

	select {
	case <-done:
		t.Fatalf("wait returned while flight at limit")
	case <-time.After(30 * time.Millisecond):
	}
	g.Decrement("AC1")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("wait did not observe the freed slot")
	}
}

func TestGate_WaitDoesNotBlockOtherFlights(t *testing.T) {
	g := NewGate(5*time.Millisecond, logger.NopLogger{})
	g.Increment("AC1")
	g.Increment("AC1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = g.WaitUntilBelow(ctx, "AC1", 2) }()

	require.NoError(t, g.WaitUntilBelow(context.Background(), "AC2", 2))
}

func TestGate_WaitHonoursContext(t *testing.T) {
	g := NewGate(5*time.Millisecond, logger.NopLogger{})
	g.Increment("AC1")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.WaitUntilBelow(ctx, "AC1", 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGate_ConcurrentCountersNeverNegative(t *testing.T) {
	g := NewGate(time.Millisecond, logger.NopLogger{})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); g.Increment("AC1") }()
		go func() { defer wg.Done(); g.Decrement("AC1") }()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, g.Count("AC1"), 0)
}

func TestGate_Reset(t *testing.T) {
	g := NewGate(0, logger.NopLogger{})
	g.Increment("AC1")
	g.Reset()
	assert.Zero(t, g.Count("AC1"))
}

func TestGate_ReleaseAfterResetKeepsNewSlots(t *testing.T) {
	g := NewGate(time.Millisecond, logger.NopLogger{})
	old := g.Increment("AC1")
	g.Increment("AC1")
	g.Reset()

	cur := g.Increment("AC1")
	assert.NotEqual(t, old, cur)
	g.Release("AC1", old)
	g.Release("AC1", old)
	assert.Equal(t, 1, g.Count("AC1"))

	g.Increment("AC1")
	require.NoError(t, g.WaitUntilBelow(context.Background(), "AC1", 3))
	g.Release("AC1", cur)
	assert.Equal(t, 1, g.Count("AC1"))
	g.Release("AC1", cur)
	assert.Empty(t, g.Snapshot())
}
