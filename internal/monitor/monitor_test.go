package monitor_test

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/nyblom/macstats/internal/influx"
	"codeberg.org/nyblom/macstats/internal/monitor"
	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/sampler"
	"codeberg.org/nyblom/macstats/internal/smc"
)

type fakeReader struct{}

func (fakeReader) ReadKey(key smc.Key) (smc.RawReading, error) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(45))

	return smc.RawReading{Key: key, Type: "flt ", Data: data}, nil
}

// fakePublisher fails the first failUntil calls and succeeds afterwards
type fakePublisher struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	published chan struct{}
}

func (f *fakePublisher) Publish(_ context.Context, points []influx.Point) error {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()

	select {
	case f.published <- struct{}{}:
	default:
	}

	if calls <= f.failUntil {
		return assert.AnError
	}
	if len(points) == 0 {
		return assert.AnError
	}

	return nil
}

func (f *fakePublisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newLoop(p monitor.Publisher, interval time.Duration) *monitor.Loop {
	reg := platform.NewRegistry(platform.M2)

	return monitor.New(
		sampler.New(fakeReader{}, reg),
		p,
		reg,
		influx.EncodeConfig{Prefix: "mac", Hostname: "test-host"},
		sampler.AllGroups(),
		interval,
	)
}

func TestLoopSurvivesConsecutivePublishFailures(t *testing.T) {
	publisher := &fakePublisher{failUntil: 3, published: make(chan struct{}, 16)}
	loop := newLoop(publisher, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	// Three failed cycles must not stop the loop; wait until a fourth
	// publish attempt proves it kept ticking
	for i := 0; i < 4; i++ {
		select {
		case <-publisher.published:
		case <-time.After(2 * time.Second):
			t.Fatal("loop stopped publishing after failures")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancellation")
	}

	assert.GreaterOrEqual(t, publisher.callCount(), 4)
}

func TestLoopRunsImmediateFirstCycle(t *testing.T) {
	publisher := &fakePublisher{published: make(chan struct{}, 1)}
	loop := newLoop(publisher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	// The first cycle fires on start, not after the first interval
	select {
	case <-publisher.published:
	case <-time.After(2 * time.Second):
		t.Fatal("no publish before the first tick")
	}

	cancel()
	<-done

	require.Equal(t, 1, publisher.callCount())
}

func TestLoopStopsOnCancellation(t *testing.T) {
	publisher := &fakePublisher{published: make(chan struct{}, 16)}
	loop := newLoop(publisher, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	<-publisher.published
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancellation")
	}

	// No new cycles start after Run has returned
	settled := publisher.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, publisher.callCount())
}
