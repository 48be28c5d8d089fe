package render

import (
	"context"
	"sync"
	"time"
)

// FrameID identifies a pending frame callback.
type FrameID uint64

// Scheduler runs one-shot callbacks on the next display refresh.
type Scheduler interface {
	// RequestFrame queues fn for the next refresh and returns its handle.
	RequestFrame(fn func()) FrameID

	// CancelFrame removes a pending callback. Unknown or already run ids are ignored.
	CancelFrame(id FrameID)
}

// FrameQueue is a Scheduler flushed explicitly by its host, typically once per
// game-loop tick. Callbacks requested while a flush is running are deferred to
// the next flush.
type FrameQueue struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func()
	order   []FrameID
}

// NewFrameQueue creates an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[FrameID]func())}
}

// RequestFrame implements Scheduler.
func (q *FrameQueue) RequestFrame(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.next++
	q.pending[q.next] = fn
	q.order = append(q.order, q.next)
	return q.next
}

// CancelFrame implements Scheduler.
func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
}

// Flush runs every callback pending when it was called, in request order, and
// returns how many ran. The queue is not locked while callbacks run.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, id := range batch {
		q.mu.Lock()
		fn, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()

		if ok {
			fn()
			ran++
		}
	}
	return ran
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// DefaultFrameInterval is roughly one 60 Hz display refresh.
const DefaultFrameInterval = time.Second / 60

// Ticker is a FrameQueue flushed by a wall-clock ticker, for hosts without a
// game loop of their own.
type Ticker struct {
	*FrameQueue

	interval time.Duration
	after    func(drawn int)
}

// NewTicker creates a ticker that flushes every interval. A non-positive
// interval selects DefaultFrameInterval.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Ticker{FrameQueue: NewFrameQueue(), interval: interval}
}

// AfterFlush registers fn to run on the ticker goroutine after every flush
// with the number of callbacks that ran. Call it before Run.
func (t *Ticker) AfterFlush(fn func(drawn int)) {
	t.after = fn
}

// Run flushes the queue on every tick until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			n := t.Flush()
			if t.after != nil {
				t.after(n)
			}
		}
	}
}

var (
	_ Scheduler = (*FrameQueue)(nil)
	_ Scheduler = (*Ticker)(nil)
)
