// Package fifo implements two fixed-resource FIFO queues for memory-constrained use:
// Circular, a byte queue over a fixed power-of-two ring, and List, a queue of opaque
// elements backed by a pool of recycled nodes that grows on demand but never shrinks.
//
// Neither queue is safe for concurrent use; callers must provide their own locking.
package fifo

import (
	"log/slog"

	"github.com/holmberd/go-fifo/internal/list"
	"github.com/holmberd/go-fifo/internal/ring"
)

var (
	defaultSlabPool = NewSlabPool(DefaultSlabPoolConfig())

	ErrInvalidCapacity = ring.ErrInvalidCapacity
	ErrNilData         = ring.ErrNilData
	ErrInvalidLength   = ring.ErrInvalidLength
	ErrFull            = ring.ErrFull
	ErrClosed          = ring.ErrClosed

	ErrNegativeCapacity = list.ErrNegativeCapacity
	ErrNilElement       = list.ErrNilElement
	ErrPoolExhausted    = list.ErrPoolExhausted
	ErrDestroyed        = list.ErrDestroyed
	ErrCorrupted        = list.ErrCorrupted
)

// SlabPooler defines the contract for the memory pool backing Circular FIFOs.
type SlabPooler = ring.SlabPooler

type (
	CircularSnapshot = ring.Snapshot
	ListSnapshot     = list.Snapshot
)

// NewCircular creates a new Circular FIFO of the given capacity in bytes, backed by
// the default slab pool.
func NewCircular(capacity int) (*Circular[*SlabPool], error) {
	return CustomCircular(defaultSlabPool, Config{Capacity: capacity})
}

// CustomCircular creates a new Circular FIFO with a custom slab pool and config.
func CustomCircular[P SlabPooler](pool P, config Config) (*Circular[P], error) {
	r, err := ring.New(pool, ring.Config{Capacity: config.Capacity})
	if err != nil {
		return nil, err
	}
	return &Circular[P]{r: r}, nil
}

// NewList creates a new List FIFO with capacity preallocated nodes.
func NewList(capacity int) (*List, error) {
	return CustomList(ListConfig{Capacity: capacity}, slog.Default())
}

// CustomList creates a new List FIFO with a custom config and logger.
func CustomList(config ListConfig, logger *slog.Logger) (*List, error) {
	l, err := list.New(config.Capacity, logger)
	if err != nil {
		return nil, err
	}
	return &List{l: l}, nil
}
