package fifo

import (
	"io"

	"github.com/holmberd/go-fifo/internal/list"
)

// List represents a FIFO of opaque elements backed by a node pool.
// The pool grows by one node whenever an element is enqueued and no free node is
// available, and is only released as a whole by Destroy.
type List struct {
	l *list.List
}

// Enqueue appends element to the FIFO and returns the new length.
// It fails with ErrNilElement if element is nil.
func (l *List) Enqueue(element any) (int, error) {
	return l.l.Enqueue(element)
}

// Dequeue removes and returns the oldest element.
// The ok result is false if the FIFO is empty.
func (l *List) Dequeue() (element any, ok bool) {
	return l.l.Dequeue()
}

// Len returns the number of elements in the FIFO.
func (l *List) Len() int {
	return l.l.Len()
}

// Cap returns the number of allocated nodes.
func (l *List) Cap() int {
	return l.l.Cap()
}

// Verify checks the consistency of the node pool.
func (l *List) Verify() error {
	return l.l.Verify()
}

// Snapshot returns a copy of the FIFO's current state for inspection.
func (l *List) Snapshot() ListSnapshot {
	return l.l.Snapshot()
}

// Print writes a human-readable dump of the FIFO to w.
func (l *List) Print(w io.Writer) {
	l.l.Print(w)
}

// Destroy releases every node. The FIFO cannot be used afterwards.
func (l *List) Destroy() {
	l.l.Destroy()
}
