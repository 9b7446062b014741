package monitor

import (
	"sync"

	"github.com/rileyhilliard/fieldmon/internal/service"
)

// DefaultHistorySize is the number of samples kept per register.
const DefaultHistorySize = 60

type registerKey struct {
	device  int
	address int
}

// History keeps ring buffers of register values keyed by device and
// register address.
type History struct {
	mu      sync.RWMutex
	size    int
	buffers map[registerKey]*ringBuffer
}

type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory returns a History keeping size samples per register.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size, buffers: make(map[registerKey]*ringBuffer)}
}

// Push records one poll's readings for deviceID.
func (h *History) Push(deviceID int, readings []service.RegisterReading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range readings {
		k := registerKey{deviceID, r.Address}
		buf, ok := h.buffers[k]
		if !ok {
			buf = newRingBuffer(h.size)
			h.buffers[k] = buf
		}
		buf.push(r.Value)
	}
}

// Last returns up to count values for one register, oldest first.
func (h *History) Last(deviceID, address, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	buf, ok := h.buffers[registerKey{deviceID, address}]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Count returns the number of samples held for one register.
func (h *History) Count(deviceID, address int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if buf, ok := h.buffers[registerKey{deviceID, address}]; ok {
		return buf.count
	}
	return 0
}

// Clear drops every register of deviceID.
func (h *History) Clear(deviceID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for k := range h.buffers {
		if k.device == deviceID {
			delete(h.buffers, k)
		}
	}
}

// ClearAll drops everything.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buffers = make(map[registerKey]*ringBuffer)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]float64, size), size: size}
}

func (r *ringBuffer) push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the newest count values in chronological order.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}
	out := make([]float64, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		out[i] = r.data[(start+i)%r.size]
	}
	return out
}
