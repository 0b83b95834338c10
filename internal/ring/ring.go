// Package ring implements a fixed-capacity circular FIFO of bytes.
package ring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// bytesPerRow is the number of bytes printed per row by Print.
const bytesPerRow = 8

var (
	ErrInvalidCapacity = errors.New("capacity must be a power of two")
	ErrNilData         = errors.New("data buffer is nil")
	ErrInvalidLength   = errors.New("byte count is out of range")
	ErrFull            = errors.New("ring is full")
	ErrClosed          = errors.New("ring is closed")
)

// Snapshot is a point-in-time copy of a ring's state.
type Snapshot struct {
	Capacity int
	Length   int
	Head     int    // Next write index.
	Tail     int    // Next read index.
	Full     bool   // Whether the ring is full.
	Data     []byte // Stored bytes, oldest first.
	Checksum uint64 // xxhash64 of Data.
}

// Ring represents a circular FIFO of bytes with a fixed, power-of-two capacity.
//
// The backing array is a single slab obtained from the pool at construction and is
// returned to it on Close. Head and tail indices wrap around using a bitmask, and
// since head == tail holds both when the ring is empty and when it is full, the
// isFull flag is kept alongside the length to tell the two apart.
//
// A Ring is not safe for concurrent use.
type Ring[P SlabPooler] struct {
	pool     P      // Slab pool owning the backing array.
	buf      []byte // Backing slab; len(buf) == capacity.
	capacity int    // Fixed at construction.
	mask     int    // capacity-1.
	head     int    // Index where the next byte is written.
	tail     int    // Index where the next byte is read.
	length   int    // Number of bytes currently stored.
	isFull   bool   // Set when head catches up with tail after a write.
	closed   bool
}

// New creates a new, empty Ring.
func New[P SlabPooler](pool P, config Config) (*Ring[P], error) {
	if err := config.Validate(pool); err != nil {
		return nil, err
	}
	return &Ring[P]{
		pool:     pool,
		buf:      pool.Get(config.Capacity)[:config.Capacity],
		capacity: config.Capacity,
		mask:     config.Capacity - 1,
	}, nil
}

// Len returns the number of bytes currently stored.
func (r *Ring[P]) Len() int {
	return r.length
}

// Cap returns the fixed capacity of the ring in bytes.
func (r *Ring[P]) Cap() int {
	return r.capacity
}

// IsFull reports whether the ring is full.
func (r *Ring[P]) IsFull() bool {
	return r.isFull
}

// Enqueue copies up to nbyte bytes from data into the ring, stopping early if the
// ring becomes full. It returns the number of bytes written.
//
// It is an error to enqueue a non-zero number of bytes into a full ring.
// Enqueueing zero bytes always succeeds.
func (r *Ring[P]) Enqueue(data []byte, nbyte int) (n int, err error) {
	if r.closed {
		return 0, ErrClosed
	}
	if data == nil {
		return 0, ErrNilData
	}
	if nbyte < 0 || nbyte > len(data) {
		return 0, ErrInvalidLength
	}
	if r.isFull && nbyte > 0 {
		return 0, ErrFull
	}
	if nbyte == 0 {
		return 0, nil
	}

	n = min(nbyte, r.capacity-r.length)

	// Fill up to the end of the slab, then wrap to its start.
	written := copy(r.buf[r.head:], data[:n])
	copy(r.buf, data[written:n])

	r.head = (r.head + n) & r.mask
	r.length += n
	if r.head == r.tail {
		r.isFull = true
	}
	return n, nil
}

// Dequeue copies up to nbyte of the oldest bytes from the ring into dest and removes them.
// It returns the number of bytes copied, which is zero if the ring is empty.
//
// Requesting more bytes than are stored is not an error; all stored bytes are returned.
func (r *Ring[P]) Dequeue(dest []byte, nbyte int) (n int, err error) {
	if r.closed {
		return 0, ErrClosed
	}
	if dest == nil {
		return 0, ErrNilData
	}
	if nbyte < 0 || nbyte > len(dest) {
		return 0, ErrInvalidLength
	}
	if r.length == 0 || nbyte == 0 {
		return 0, nil
	}

	n = min(nbyte, r.length)
	read := copy(dest[:n], r.buf[r.tail:])
	copy(dest[read:n], r.buf)

	r.tail = (r.tail + n) & r.mask
	r.length -= n
	r.isFull = false
	return n, nil
}

// Reset empties the ring without releasing its backing slab.
func (r *Ring[P]) Reset() {
	r.head = 0
	r.tail = 0
	r.length = 0
	r.isFull = false
}

// Close empties the ring and returns its backing slab to the pool.
// Any further Enqueue or Dequeue fails with ErrClosed.
func (r *Ring[P]) Close() {
	if r.closed {
		return
	}
	r.Reset()
	r.pool.Put(r.buf)
	r.buf = nil
	r.closed = true
}

// NewReader returns a reader over the stored bytes, oldest first.
func (r *Ring[P]) NewReader() *Reader[P] {
	return NewReader(r)
}

// Checksum returns the xxhash64 digest of the stored bytes, oldest first.
func (r *Ring[P]) Checksum() uint64 {
	d := xxhash.New()
	r.NewReader().WriteTo(d) // Digest writes never fail.
	return d.Sum64()
}

// Snapshot returns a copy of the ring's current state.
func (r *Ring[P]) Snapshot() Snapshot {
	s := Snapshot{
		Capacity: r.capacity,
		Length:   r.length,
		Head:     r.head,
		Tail:     r.tail,
		Full:     r.isFull,
	}
	var data bytes.Buffer
	data.Grow(r.length)
	d := xxhash.New()
	r.NewReader().WriteTo(io.MultiWriter(d, &data))
	s.Data = data.Bytes()
	s.Checksum = d.Sum64()
	return s
}

// Print outputs a visual representation of the ring for debugging purposes.
// Stored bytes are printed oldest first as rows of space-separated hexadecimal values,
// each prefixed with its offset from the tail.
func (r *Ring[P]) Print(w io.Writer) {
	if r == nil {
		return
	}
	s := r.Snapshot()
	fmt.Fprintf(
		w,
		"--- Ring (cap=%d len=%d head=%d tail=%d full=%t) ---\n",
		s.Capacity, s.Length, s.Head, s.Tail, s.Full,
	)
	if s.Length == 0 {
		fmt.Fprintf(w, "(empty)\n")
		return
	}

	// Align all row offsets to the width of the last one.
	paddingWidth := len(strconv.Itoa((s.Length - 1) / bytesPerRow * bytesPerRow))
	for i := 0; i < s.Length; i += bytesPerRow {
		end := min(i+bytesPerRow, s.Length)
		fmt.Fprintf(w, "%*d: [% x]\n", paddingWidth, i, s.Data[i:end])
	}
}
