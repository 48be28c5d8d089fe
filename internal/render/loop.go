package render

import "sync"

// Loop is a cancellable repeating frame task: every frame it runs its draw
// function and schedules itself again.
type Loop struct {
	mu     sync.Mutex
	sched  Scheduler
	draw   func()
	id     FrameID
	active bool
}

// NewLoop creates a stopped loop that calls draw once per frame on s.
func NewLoop(s Scheduler, draw func()) *Loop {
	return &Loop{sched: s, draw: draw}
}

// Start schedules the first frame. Starting an active loop is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		return
	}
	l.active = true
	l.id = l.sched.RequestFrame(l.tick)
}

func (l *Loop) tick() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return
	}
	l.draw()
	l.id = l.sched.RequestFrame(l.tick)
}

// Cancel removes the pending frame. It waits for a draw in progress, and no
// draw starts after it returns. Cancelling a stopped loop is a no-op.
func (l *Loop) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return
	}
	l.active = false
	l.sched.CancelFrame(l.id)
}

// Active reports whether the loop is scheduled.
func (l *Loop) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}
