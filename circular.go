package fifo

import (
	"io"

	"github.com/holmberd/go-fifo/internal/ring"
)

// Circular represents a FIFO of bytes with a fixed, power-of-two capacity.
//
// Besides the Enqueue and Dequeue operations it implements [io.Writer] and
// [io.Reader], so it can be used as a bounded pipe between two parts of a program.
type Circular[P SlabPooler] struct {
	r *ring.Ring[P]
}

// Enqueue copies up to nbyte bytes from data into the FIFO and returns the number of
// bytes written, which is less than nbyte if the FIFO fills up.
//
// It fails with ErrNilData if data is nil, and with ErrFull if the FIFO is already full
// and nbyte > 0. Enqueueing zero bytes always succeeds.
func (c *Circular[P]) Enqueue(data []byte, nbyte int) (int, error) {
	return c.r.Enqueue(data, nbyte)
}

// Dequeue removes up to nbyte of the oldest bytes from the FIFO into dest and returns
// the number of bytes copied. It returns 0 if the FIFO is empty.
func (c *Circular[P]) Dequeue(dest []byte, nbyte int) (int, error) {
	return c.r.Dequeue(dest, nbyte)
}

// Len returns the number of bytes currently in the FIFO.
func (c *Circular[P]) Len() int {
	return c.r.Len()
}

// Cap returns the capacity of the FIFO in bytes.
func (c *Circular[P]) Cap() int {
	return c.r.Cap()
}

// Write implements [io.Writer]. It writes as much of p as fits and returns ErrFull
// if not all of p could be written.
func (c *Circular[P]) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := c.r.Enqueue(p, len(p))
	if err == nil && n < len(p) {
		err = ErrFull
	}
	return n, err
}

// Read implements [io.Reader]. It returns [io.EOF] if the FIFO is empty.
func (c *Circular[P]) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := c.r.Dequeue(p, len(p))
	if err == nil && n == 0 {
		err = io.EOF
	}
	return n, err
}

// Checksum returns the xxhash64 digest of the bytes in the FIFO, oldest first.
func (c *Circular[P]) Checksum() uint64 {
	return c.r.Checksum()
}

// Snapshot returns a copy of the FIFO's current state for inspection.
func (c *Circular[P]) Snapshot() CircularSnapshot {
	return c.r.Snapshot()
}

// Print writes a human-readable dump of the FIFO to w.
func (c *Circular[P]) Print(w io.Writer) {
	c.r.Print(w)
}

// Reset empties the FIFO.
func (c *Circular[P]) Reset() {
	c.r.Reset()
}

// Close returns the FIFO's memory to its slab pool. The FIFO cannot be used afterwards.
func (c *Circular[P]) Close() {
	c.r.Close()
}
