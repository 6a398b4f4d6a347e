package room

import (
	"testing"
	"time"
)

// fakeClock is a hand-advanced wall clock for deterministic timing tests.
type fakeClock struct {
	t time.Time
}

// The epoch is kept small so millisecond arithmetic stays exact in
// float64.
func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0).UTC()}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *fakeClock) ms() float64 {
	return float64(c.t.UnixNano()) / float64(time.Millisecond)
}

func TestTimeSyncerBurst(t *testing.T) {
	clock := newFakeClock()
	var probes []int
	ts := NewTimeSyncer(time.Minute, time.Nanosecond, 5, func(id int) error {
		probes = append(probes, id)
		return nil
	}, clock.Now)

	var changes []int64
	synced := 0
	ts.onChange = func(delta int64) { changes = append(changes, delta) }
	ts.onSynced = func() { synced++ }

	ts.Sync(2, time.Nanosecond)
	if len(probes) != 2 {
		t.Fatalf("sent %d probes, want 2", len(probes))
	}

	// The server clock trails ours by 100ms; with zero round trip every
	// sample is exactly that difference.
	ts.HandleResult(probes[0], clock.ms()-100)
	if len(changes) != 0 {
		t.Fatalf("offset changed before the burst completed")
	}
	ts.HandleResult(probes[1], clock.ms()-100)

	if got := ts.Offset(); got != 100 {
		t.Errorf("Offset() = %d, want 100", got)
	}
	if len(changes) != 1 || changes[0] != 100 {
		t.Errorf("onChange deltas = %v, want [100]", changes)
	}
	if synced != 1 {
		t.Errorf("onSynced fired %d times, want 1", synced)
	}

	// A second burst against the same skew finds nothing left to correct.
	ts.Sync(2, time.Nanosecond)
	ts.HandleResult(probes[2], clock.ms()-100)
	ts.HandleResult(probes[3], clock.ms()-100)
	if got := ts.Offset(); got != 100 {
		t.Errorf("Offset() after second burst = %d, want 100", got)
	}
	if len(changes) != 2 || changes[1] != 0 {
		t.Errorf("onChange deltas = %v, want [100 0]", changes)
	}
}

func TestTimeSyncerRoundTripHalved(t *testing.T) {
	clock := newFakeClock()
	var id int
	ts := NewTimeSyncer(time.Minute, time.Nanosecond, 5, func(probe int) error {
		id = probe
		return nil
	}, clock.Now)

	ts.Sync(1, time.Nanosecond)
	sent := clock.ms()
	clock.Advance(50 * time.Millisecond)
	// The server answered halfway through a 50ms round trip with a clock
	// matching ours, so the measured offset is just the skew estimate
	// t1 + rtt/2 - server.
	ts.HandleResult(id, sent+25)
	if got := ts.Offset(); got != 0 {
		t.Errorf("Offset() = %d, want 0", got)
	}
}

func TestTimeSyncerUnknownID(t *testing.T) {
	clock := newFakeClock()
	ts := NewTimeSyncer(time.Minute, time.Nanosecond, 5, func(int) error { return nil }, clock.Now)
	ts.onChange = func(int64) { t.Fatal("onChange fired for unknown probe") }
	ts.HandleResult(99, clock.ms())
	if got := ts.Offset(); got != 0 {
		t.Errorf("Offset() = %d, want 0", got)
	}
}

func TestTimeSyncerEmitFailure(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	ts := NewTimeSyncer(time.Minute, time.Nanosecond, 5, func(int) error {
		calls++
		if calls == 1 {
			return ErrSocketClosed
		}
		return nil
	}, clock.Now)
	synced := 0
	ts.onSynced = func() { synced++ }

	ts.Sync(2, time.Nanosecond)
	// The failed probe must not be waited for.
	ts.HandleResult(1, clock.ms())
	if synced != 1 {
		t.Errorf("onSynced fired %d times, want 1", synced)
	}
}

func TestTimeSyncerNow(t *testing.T) {
	clock := newFakeClock()
	var id int
	ts := NewTimeSyncer(time.Minute, time.Nanosecond, 5, func(probe int) error {
		id = probe
		return nil
	}, clock.Now)

	ts.Sync(1, time.Nanosecond)
	ts.HandleResult(id, clock.ms()-250)
	if got, want := ts.Now(), clock.ms()-250; got != want {
		t.Errorf("Now() = %f, want %f", got, want)
	}
}
