package device

import (
	"sync"
	"time"
)

// nullPeriod is how often the null pump renders.
const nullPeriod = 10 * time.Millisecond

// Null renders its source in real time and discards the samples, so the graph
// advances and taps stay live on machines without a sound card.
type Null struct {
	src        Source
	sampleRate int

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// NewNull creates a suspended null output.
func NewNull(src Source, sampleRate int) *Null {
	return &Null{src: src, sampleRate: sampleRate}
}

// Name implements Output.
func (n *Null) Name() string { return KindNull }

// Resume implements Output.
func (n *Null) Resume() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrUnavailable
	}
	if n.stop != nil {
		return nil
	}
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.pump(n.stop, n.done)
	return nil
}

// Suspend implements Output. It returns once the pump goroutine has exited.
func (n *Null) Suspend() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.halt()
	return nil
}

// Close implements Output.
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.halt()
	n.closed = true
	return nil
}

func (n *Null) halt() {
	if n.stop == nil {
		return
	}
	close(n.stop)
	<-n.done
	n.stop, n.done = nil, nil
}

func (n *Null) pump(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	tk := time.NewTicker(nullPeriod)
	defer tk.Stop()

	var buf []float32
	last := time.Now()
	var owed float64

	for {
		select {
		case <-stop:
			return
		case now := <-tk.C:
			owed += now.Sub(last).Seconds() * float64(n.sampleRate)
			last = now

			frames := int(owed)
			if frames == 0 {
				continue
			}
			owed -= float64(frames)
			if cap(buf) < frames {
				buf = make([]float32, frames)
			}
			n.src.Render(buf[:frames])
		}
	}
}
