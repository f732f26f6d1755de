package graph

// frameRing is a multi-channel circular buffer bridging whole render quanta
// and the block sizes a device asks for. It is not synchronized; the
// realtime context guards it with its own mutex.
type frameRing struct {
	data     [][]float64
	capacity int
	size     int
	readPos  int
	writePos int
}

func newFrameRing(channels, capacity int) *frameRing {
	if capacity < 1 {
		capacity = 1
	}
	return &frameRing{
		data:     newBuffer(channels, capacity),
		capacity: capacity,
	}
}

// Write appends all frames of src, growing when full.
func (r *frameRing) Write(src [][]float64) {
	n := len(src[0])
	if n == 0 {
		return
	}
	if r.size+n > r.capacity {
		r.grow(r.size + n)
	}
	for ch, samples := range src {
		dst := r.data[ch]
		first := copy(dst[r.writePos:], samples)
		copy(dst, samples[first:])
	}
	r.writePos = (r.writePos + n) % r.capacity
	r.size += n
}

// ReadInto moves up to len(dst[0]) frames into dst and returns the count.
func (r *frameRing) ReadInto(dst [][]float64) int {
	n := min(len(dst[0]), r.size)
	if n == 0 {
		return 0
	}
	for ch, out := range dst {
		src := r.data[ch]
		end := r.readPos + n
		if end <= r.capacity {
			copy(out[:n], src[r.readPos:end])
		} else {
			first := copy(out[:n], src[r.readPos:])
			copy(out[first:n], src[:end-r.capacity])
		}
	}
	r.readPos = (r.readPos + n) % r.capacity
	r.size -= n
	return n
}

// Available returns the number of buffered frames.
func (r *frameRing) Available() int { return r.size }

// Clear drops all buffered frames.
func (r *frameRing) Clear() {
	r.size = 0
	r.readPos = 0
	r.writePos = 0
}

// grow doubles the capacity until minCapacity fits, keeping frame order.
func (r *frameRing) grow(minCapacity int) {
	newCapacity := r.capacity
	for newCapacity < minCapacity {
		newCapacity *= 2
	}

	data := newBuffer(len(r.data), newCapacity)
	n := r.size
	for ch := range r.data {
		src := r.data[ch]
		end := r.readPos + n
		if end <= r.capacity {
			copy(data[ch], src[r.readPos:end])
		} else {
			first := copy(data[ch], src[r.readPos:])
			copy(data[ch][first:], src[:end-r.capacity])
		}
	}

	r.data = data
	r.capacity = newCapacity
	r.readPos = 0
	r.writePos = n % newCapacity
}
