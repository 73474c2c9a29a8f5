package watcher

import (
	"sync"
	"time"
)

// defaultWindow coalesces the write bursts editors and copies produce.
const defaultWindow = 500 * time.Millisecond

// debouncer coalesces rapid events per path so one dropped file triggers
// one ingestion, not one per write syscall. Within a window:
//   - WRITE + WRITE  = WRITE
//   - WRITE + REMOVE = REMOVE
//   - REMOVE + WRITE = WRITE (file was replaced)
type debouncer struct {
	window  time.Duration
	output  chan []FileEvent
	mu      sync.Mutex
	pending map[string]FileEvent
	timer   *time.Timer
	stopped bool
}

func newDebouncer(window time.Duration) *debouncer {
	if window <= 0 {
		window = defaultWindow
	}
	return &debouncer{
		window:  window,
		output:  make(chan []FileEvent, 8),
		pending: make(map[string]FileEvent),
	}
}

// add records an event, replacing any pending one for the same path.
// The newest operation wins under the coalescing rules above.
func (d *debouncer) add(event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[event.Path] = event

	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.flush)
	} else {
		d.timer.Reset(d.window)
	}
}

// flush emits all pending events as one batch.
func (d *debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]FileEvent, 0, len(d.pending))
	for _, ev := range d.pending {
		batch = append(batch, ev)
	}
	d.pending = make(map[string]FileEvent)
	d.timer = nil

	// Non-blocking send under the lock: stop cannot close the channel
	// mid-send, and a full buffer drops the batch instead of wedging
	// the timer goroutine.
	select {
	case d.output <- batch:
	default:
	}
	d.mu.Unlock()
}

// stop drops pending events and closes the output channel.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	close(d.output)
}
