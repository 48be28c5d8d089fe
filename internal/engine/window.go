package engine

// window keeps the most recent samples of a stream in a fixed circular buffer.
// It starts full of zeros and overwrites the oldest sample on every write.
type window struct {
	data     []float64
	writePos int
}

func newWindow(capacity int) *window {
	if capacity < 1 {
		capacity = 1
	}
	return &window{data: make([]float64, capacity)}
}

// Write appends samples, dropping the oldest ones.
func (w *window) Write(samples []float64) {
	capacity := len(w.data)
	if len(samples) >= capacity {
		copy(w.data, samples[len(samples)-capacity:])
		w.writePos = 0
		return
	}

	// Write samples (may wrap around)
	n := copy(w.data[w.writePos:], samples)
	copy(w.data, samples[n:])
	w.writePos = (w.writePos + len(samples)) % capacity
}

// Peek copies up to len(dst) samples, oldest first, and returns the count.
func (w *window) Peek(dst []float64) int {
	n := min(len(dst), len(w.data))
	first := copy(dst[:n], w.data[w.writePos:])
	copy(dst[first:n], w.data)
	return n
}
