package kfmt

import "io"

// ringBufferSize defines the capacity of the buffer that captures early
// Printf output. It must be a power of 2.
const ringBufferSize = 2048

// ringBuffer buffers Printf output generated before an output sink is
// attached. When the buffer fills up the oldest data is overwritten.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
	full           bool
}

// Write appends len(p) bytes from p to the ring buffer, evicting the
// oldest bytes on overflow.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.full {
			rb.rIndex = rb.wIndex
		}
		if rb.rIndex == rb.wIndex {
			rb.full = true
		}
	}

	return len(p), nil
}

// Read reads up to len(p) buffered bytes into p. It returns io.EOF when
// the buffer is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex && !rb.full {
		return 0, io.EOF
	}

	var n int
	for n < len(p) {
		p[n] = rb.buffer[rb.rIndex]
		rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		rb.full = false
		n++

		if rb.rIndex == rb.wIndex {
			break
		}
	}

	return n, nil
}
