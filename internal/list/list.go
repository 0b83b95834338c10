// Package list implements a FIFO queue of opaque elements backed by a pool of
// recycled nodes that grows on demand and never shrinks.
package list

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strconv"
)

// MaxCapacity is the maximum number of nodes a List can allocate.
const MaxCapacity = math.MaxInt32

// nilIndex marks the absence of a node.
const nilIndex int32 = -1

var (
	ErrNegativeCapacity = errors.New("capacity cannot be negative")
	ErrNilElement       = errors.New("element cannot be nil")
	ErrPoolExhausted    = fmt.Errorf("node pool is exhausted (max %d nodes)", MaxCapacity)
	ErrDestroyed        = errors.New("list is destroyed")
	ErrCorrupted        = errors.New("list is corrupted")
)

type nodeState uint8

const (
	stateFree nodeState = iota // Node is in the free list and holds no element.
	stateUsed                  // Node is in the used list and holds an element.
)

func (s nodeState) String() string {
	switch s {
	case stateFree:
		return "free"
	case stateUsed:
		return "used"
	default:
		return fmt.Sprintf("nodeState(%d)", s)
	}
}

// node is a slot in the arena. It is linked into exactly one of the two chains.
type node struct {
	value any
	prev  int32 // Neighbour towards the tail of the chain.
	next  int32 // Neighbour towards the head of the chain.
	state nodeState
}

// chain is a doubly-linked list of arena nodes addressed by index.
// Nodes are pushed at the head and popped at the tail.
type chain struct {
	head int32
	tail int32
	size int
}

func newChain() chain {
	return chain{head: nilIndex, tail: nilIndex}
}

// Snapshot is a point-in-time copy of a list's state.
type Snapshot struct {
	Capacity int
	Length   int
	Free     int
	Elements []any // Enqueued elements, oldest first.
}

// List represents a FIFO queue of elements.
//
// Nodes are stored in an arena and linked by index into two chains sharing the pool:
// the free chain holds nodes available for storage, and the used chain holds enqueued
// elements in insertion order. Enqueue moves a node from the free chain to the used
// chain, allocating exactly one new node only when the free chain is empty; Dequeue
// moves it back. Nodes are never released individually, only all at once by Destroy.
//
// A List is not safe for concurrent use.
type List struct {
	logger    *slog.Logger
	nodes     []node // Arena; a node keeps its index for the lifetime of the list.
	free      chain
	used      chain
	destroyed bool
}

// New creates a new, empty List with capacity preallocated free nodes.
func New(capacity int, logger *slog.Logger) (*List, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrNegativeCapacity)
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrPoolExhausted)
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &List{
		logger: logger,
		nodes:  make([]node, 0, capacity),
		free:   newChain(),
		used:   newChain(),
	}
	for range capacity {
		l.grow()
	}
	return l, nil
}

// Len returns the number of enqueued elements.
func (l *List) Len() int {
	return l.used.size
}

// Cap returns the number of allocated nodes, free and used.
func (l *List) Cap() int {
	return len(l.nodes)
}

// Enqueue appends element to the queue and returns the new length.
// The pool grows by one node if no free node is available.
func (l *List) Enqueue(element any) (int, error) {
	if l.destroyed {
		return 0, ErrDestroyed
	}
	if isNil(element) {
		return 0, ErrNilElement
	}
	if l.free.size == 0 {
		if len(l.nodes) >= MaxCapacity {
			return 0, ErrPoolExhausted
		}
		l.grow()
	}

	i := l.popTail(&l.free)
	n := &l.nodes[i]
	n.value = element
	n.state = stateUsed
	l.pushHead(&l.used, i)
	return l.used.size, nil
}

// Dequeue removes and returns the oldest element.
// The ok result is false if the queue is empty.
func (l *List) Dequeue() (element any, ok bool) {
	if l.destroyed || l.used.size == 0 {
		return nil, false
	}

	i := l.popTail(&l.used)
	n := &l.nodes[i]
	element = n.value
	n.value = nil
	n.state = stateFree
	l.pushHead(&l.free, i)
	return element, true
}

// Destroy releases every node in both chains. The list cannot be used afterwards.
func (l *List) Destroy() {
	if l.destroyed {
		return
	}
	usedCount := l.walk(l.used)
	freeCount := l.walk(l.free)
	if usedCount != l.used.size || freeCount != l.free.size || usedCount+freeCount != len(l.nodes) {
		l.logger.Error(
			"Node pool corruption detected at teardown. Releasing all nodes",
			"error", ErrCorrupted,
			"capacity", len(l.nodes),
			"length", l.used.size,
			"usedNodes", usedCount,
			"freeNodes", freeCount,
		)
	}

	clear(l.nodes) // Drop element references.
	l.nodes = nil
	l.free = newChain()
	l.used = newChain()
	l.destroyed = true
}

// Verify checks that every allocated node is linked into exactly one chain, that
// both chains are consistently linked in both directions, and that node states and
// payloads match the chain holding them.
func (l *List) Verify() error {
	if l.destroyed {
		return ErrDestroyed
	}
	seen := make([]bool, len(l.nodes))
	errs := append(
		l.verifyChain("used", l.used, stateUsed, seen),
		l.verifyChain("free", l.free, stateFree, seen)...,
	)
	if total := l.used.size + l.free.size; total != len(l.nodes) {
		errs = append(errs, fmt.Errorf("chain sizes %d+%d do not add up to capacity %d", l.used.size, l.free.size, len(l.nodes)))
	}
	for i, ok := range seen {
		if !ok {
			errs = append(errs, fmt.Errorf("node %d is not linked into any chain", i))
		}
	}
	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrCorrupted, errors.Join(errs...))
		l.logger.Error("Node pool corruption detected", "error", err)
		return err
	}
	return nil
}

// Snapshot returns a copy of the list's current state.
func (l *List) Snapshot() Snapshot {
	s := Snapshot{
		Capacity: len(l.nodes),
		Length:   l.used.size,
		Free:     l.free.size,
		Elements: make([]any, 0, l.used.size),
	}
	for i := l.used.tail; i != nilIndex && len(s.Elements) < l.used.size; i = l.nodes[i].next {
		s.Elements = append(s.Elements, l.nodes[i].value)
	}
	return s
}

// Print outputs a visual representation of the list for debugging purposes.
// Enqueued elements are printed oldest first, one per row.
func (l *List) Print(w io.Writer) {
	if l == nil {
		return
	}
	s := l.Snapshot()
	fmt.Fprintf(w, "--- List (cap=%d len=%d free=%d) ---\n", s.Capacity, s.Length, s.Free)
	if s.Length == 0 {
		fmt.Fprintf(w, "(empty)\n")
		return
	}
	paddingWidth := len(strconv.Itoa(s.Length - 1))
	for i, e := range s.Elements {
		fmt.Fprintf(w, "%*d: %v\n", paddingWidth, i, e)
	}
}

// grow allocates a new free node.
func (l *List) grow() {
	i := int32(len(l.nodes))
	l.nodes = append(l.nodes, node{prev: nilIndex, next: nilIndex, state: stateFree})
	l.pushHead(&l.free, i)
}

// pushHead links node i in at the head of c.
func (l *List) pushHead(c *chain, i int32) {
	n := &l.nodes[i]
	n.prev = c.head
	n.next = nilIndex
	if c.head != nilIndex {
		l.nodes[c.head].next = i
	} else {
		c.tail = i
	}
	c.head = i
	c.size++
}

// popTail unlinks and returns the tail node of c.
// It assumes c is not empty.
func (l *List) popTail(c *chain) int32 {
	i := c.tail
	n := &l.nodes[i]
	if n.next != nilIndex {
		l.nodes[n.next].prev = nilIndex
	} else {
		c.head = nilIndex
	}
	c.tail = n.next
	n.prev = nilIndex
	n.next = nilIndex
	c.size--
	return i
}

// walk returns the number of nodes reachable from the tail of c.
// The walk is bounded by the arena size, so a cycle cannot make it loop forever.
func (l *List) walk(c chain) int {
	count := 0
	for i := c.tail; i != nilIndex && count <= len(l.nodes); i = l.nodes[i].next {
		if int(i) >= len(l.nodes) || i < 0 {
			break
		}
		count++
	}
	return count
}

// verifyChain walks c from tail to head and returns any inconsistencies found.
// Visited nodes are marked in seen.
func (l *List) verifyChain(name string, c chain, want nodeState, seen []bool) []error {
	var errs []error
	count := 0
	prev := nilIndex
	for i := c.tail; i != nilIndex; i = l.nodes[i].next {
		if i < 0 || int(i) >= len(l.nodes) {
			return append(errs, fmt.Errorf("%s chain: node index %d out of range", name, i))
		}
		if seen[i] {
			return append(errs, fmt.Errorf("%s chain: node %d is linked more than once", name, i))
		}
		seen[i] = true
		n := l.nodes[i]
		if n.prev != prev {
			errs = append(errs, fmt.Errorf("%s chain: node %d links back to %d, expected %d", name, i, n.prev, prev))
		}
		if n.state != want {
			errs = append(errs, fmt.Errorf("%s chain: node %d is %s", name, i, n.state))
		}
		if (n.value != nil) != (want == stateUsed) {
			errs = append(errs, fmt.Errorf("%s chain: node %d has unexpected payload %v", name, i, n.value))
		}
		prev = i
		count++
	}
	if prev != c.head {
		errs = append(errs, fmt.Errorf("%s chain: walk ended at node %d, expected head %d", name, prev, c.head))
	}
	if count != c.size {
		errs = append(errs, fmt.Errorf("%s chain: walked %d nodes, expected %d", name, count, c.size))
	}
	return errs
}

// isNil reports whether v is nil or a typed nil reference.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
