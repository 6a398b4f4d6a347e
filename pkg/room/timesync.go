package room

import (
	"context"
	"sync"
	"time"
)

// Time sync cadence. A burst of probes runs at connect time, then a full
// burst repeats on every interval tick.
const (
	defaultSyncInterval = 10 * time.Second
	defaultSyncRepeat   = 5
	defaultSyncDelay    = 250 * time.Millisecond

	initialSyncRepeat = 3
	initialSyncDelay  = 100 * time.Millisecond
)

// TimeSyncer keeps a running estimate of the clock offset between this
// client and the game server, NTP style: each probe measures round trip
// and remote timestamp, each completed burst folds the mean offset into
// the estimate.
type TimeSyncer struct {
	interval time.Duration
	delay    time.Duration
	repeat   int

	emit func(id int) error
	now  func() time.Time

	// onChange reports the per-burst offset delta, onSynced the end of a
	// burst.
	onChange func(deltaMS int64)
	onSynced func()

	mu       sync.Mutex
	offsetMS float64
	syncID   int
	sent     map[int]float64
	inFlight int
	sum      float64
	burst    int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTimeSyncer builds a syncer that sends probes through emit. now is
// the wall clock source, injectable for tests.
func NewTimeSyncer(interval, delay time.Duration, repeat int, emit func(id int) error, now func() time.Time) *TimeSyncer {
	if now == nil {
		now = time.Now
	}
	return &TimeSyncer{
		interval: interval,
		delay:    delay,
		repeat:   repeat,
		emit:     emit,
		now:      now,
		sent:     make(map[int]float64),
		done:     make(chan struct{}),
	}
}

// Now returns the current server-aligned time in milliseconds.
func (t *TimeSyncer) Now() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localMS()
}

func (t *TimeSyncer) localMS() float64 {
	return float64(t.now().UnixNano())/float64(time.Millisecond) - t.offsetMS
}

// Offset returns the accumulated offset estimate in milliseconds.
func (t *TimeSyncer) Offset() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(t.offsetMS)
}

// Start launches the sync loop: a short burst immediately, then a full
// burst per interval. It returns after launching the goroutine.
func (t *TimeSyncer) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.Sync(initialSyncRepeat, initialSyncDelay)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case <-ticker.C:
				t.Sync(t.repeat, t.delay)
			}
		}
	}()
}

// Stop ends the sync loop and waits for it.
func (t *TimeSyncer) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
	t.wg.Wait()
}

// Sync runs one burst of probes, pacing them by delay.
func (t *TimeSyncer) Sync(repeat int, delay time.Duration) {
	t.mu.Lock()
	t.inFlight += repeat
	t.burst += repeat
	t.mu.Unlock()

	for i := 0; i < repeat; i++ {
		t.mu.Lock()
		id := t.syncID
		t.syncID++
		t.sent[id] = t.localMS()
		t.mu.Unlock()

		if err := t.emit(id); err != nil {
			t.mu.Lock()
			delete(t.sent, id)
			t.inFlight--
			t.burst--
			t.mu.Unlock()
		}

		select {
		case <-t.done:
			return
		case <-time.After(delay):
		}
	}
}

// HandleResult processes one probe answer: id echoes the probe, server
// is the remote timestamp in milliseconds. Unknown ids are dropped.
func (t *TimeSyncer) HandleResult(id int, server float64) {
	t.mu.Lock()
	t0, ok := t.sent[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.sent, id)
	t.inFlight--

	t1 := t.localMS()
	t.sum += t1 + (t1-t0)/2 - server

	finished := t.inFlight == 0
	var delta int64
	if finished {
		delta = int64(t.sum / float64(t.burst))
		t.offsetMS += float64(delta)
		t.sum = 0
		t.burst = 0
	}
	onChange, onSynced := t.onChange, t.onSynced
	t.mu.Unlock()

	if finished {
		if onChange != nil {
			onChange(delta)
		}
		if onSynced != nil {
			onSynced()
		}
	}
}
