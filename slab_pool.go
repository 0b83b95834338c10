package fifo

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"slices"
	"sync"

	"golang.org/x/sys/unix"
)

const slabsPerAlloc = 1

const (
	KiB = 1024
	MiB = KiB * KiB

	MinSlabSize = 1
	MaxSlabSize = 16 * MiB
)

// numSlabClasses is the number of supported slab sizes, one per power of two
// from MinSlabSize to MaxSlabSize.
const numSlabClasses = 25

func init() {
	// Runtime assertion.
	if 1<<(numSlabClasses-1) != MaxSlabSize {
		panic(errors.New("slab classes must cover every power of two up to MaxSlabSize"))
	}
}

type SlabPoolConfig struct {
	// Number of free slabs for each size class the pool can hold before starting to
	// release memory. Index i holds the threshold for slabs of 1<<i bytes.
	// A value of 0 disables releasing memory for that class.
	FreeThresholds [numSlabClasses]int
}

func (c SlabPoolConfig) Validate() error {
	var errs []error
	for i, threshold := range c.FreeThresholds {
		if threshold < 0 {
			errs = append(
				errs,
				fmt.Errorf("invalid config: free threshold %d for slab size %d cannot be negative", threshold, 1<<i),
			)
		}
	}
	return errors.Join(errs...)
}

// SlabPool is a thread-safe pool of fixed-size memory slabs, one free list per
// power-of-two size class.
//
// Slabs of at least one page are mapped outside of the Go heap, so that long-lived
// ring storage adds nothing for the GOGC to scan; smaller slabs are heap-allocated
// since mmap cannot hand out less than a page.
type SlabPool struct {
	mu       sync.Mutex
	pageSize int
	free     [numSlabClasses][][]byte

	// freeThresholds represents the number of free slabs for each size class the
	// pool can hold before starting to release memory.
	freeThresholds [numSlabClasses]int
}

// NewSlabPool creates a new, empty slab pool.
// It will panic if the config is invalid.
func NewSlabPool(config SlabPoolConfig) *SlabPool {
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return &SlabPool{
		pageSize:       unix.Getpagesize(),
		freeThresholds: config.FreeThresholds,
	}
}

// MaxSize returns the largest supported slab size.
func (p *SlabPool) MaxSize() int {
	return MaxSlabSize
}

// IsSupported reports whether size is a power of two between MinSlabSize and MaxSlabSize.
func (p *SlabPool) IsSupported(size int) bool {
	return size >= MinSlabSize && size <= MaxSlabSize && size&(size-1) == 0
}

// Get retrieves a slab of the specified size, allocating one if none is free.
// It will panic if an unsupported size is requested.
func (p *SlabPool) Get(size int) []byte {
	if !p.IsSupported(size) {
		panic(fmt.Sprintf("unsupported slab size requested: %d", size))
	}
	class := slabClass(size)

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free[class]) == 0 {
		p.alloc(size, slabsPerAlloc)
	}
	n := len(p.free[class]) - 1
	s := p.free[class][n]
	p.free[class][n] = nil
	p.free[class] = p.free[class][:n]
	return s
}

// Put returns a slab to the pool.
// It does nothing if the slab size is not a supported size.
func (p *SlabPool) Put(s []byte) {
	if s == nil {
		return
	}
	size := cap(s)
	if !p.IsSupported(size) {
		return
	}
	s = s[:size] // Ensure the slab is reset to its full capacity before returning.
	class := slabClass(size)

	p.mu.Lock()
	p.free[class] = append(p.free[class], s)
	var toRelease [][]byte
	p.free[class], toRelease = releaseSlabs(p.free[class], p.freeThresholds[class])
	p.mu.Unlock()

	// Release outside of the lock to avoid blocking other operations.
	for _, slab := range toRelease {
		p.release(slab)
	}
}

// Allocate ensures that at least numSlabs are free in the pool for the specified size.
// This is useful for pre-warming a pool to a specific capacity.
// It will panic if an unsupported size is requested.
func (p *SlabPool) Allocate(size int, numSlabs int) {
	if numSlabs <= 0 {
		return
	}
	if !p.IsSupported(size) {
		panic(fmt.Sprintf("unsupported slab size for pre-allocation: %d", size))
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := numSlabs - len(p.free[slabClass(size)]); n > 0 {
		p.alloc(size, n)
	}
}

// Release releases all free slabs back to the runtime or operating system.
// Slabs currently held by rings are unaffected.
func (p *SlabPool) Release() {
	var toRelease [][]byte
	p.mu.Lock()
	for class := range p.free {
		toRelease = append(toRelease, p.free[class]...)
		clear(p.free[class])
		p.free[class] = p.free[class][:0]
	}
	p.mu.Unlock()

	for _, slab := range toRelease {
		p.release(slab)
	}
}

// isMapped reports whether slabs of the given size are mapped outside the Go heap.
func (p *SlabPool) isMapped(size int) bool {
	return size >= p.pageSize
}

// release frees the memory of a slab. Mapped slabs are unmapped; heap slabs are
// left to the garbage collector.
func (p *SlabPool) release(s []byte) {
	if !p.isMapped(cap(s)) {
		return
	}
	if err := unix.Munmap(s); err != nil {
		slog.Error("failed to unmap slab", "error", err, "size", cap(s))
	}
}

// alloc allocates the specified number of free slabs of the given size.
// It assumes the caller holds the mutex.
func (p *SlabPool) alloc(size int, numSlabs int) {
	class := slabClass(size)
	for range numSlabs {
		if !p.isMapped(size) {
			p.free[class] = append(p.free[class], make([]byte, size))
			continue
		}

		// Each slab is mapped on its own so that it can be unmapped on its own.
		data, err := unix.Mmap(-1, 0, size,
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_ANON|unix.MAP_PRIVATE,
		)
		if err != nil {
			panic(fmt.Errorf("cannot allocate %d bytes via mmap for slab: %w", size, err))
		}
		p.free[class] = append(p.free[class], data)
	}
}

// numFree returns the number of available slabs for a given size.
// It is primarily intended as helper method in tests.
func (p *SlabPool) numFree(size int) int {
	if !p.IsSupported(size) {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free[slabClass(size)])
}

// slabClass returns the free list index for a supported slab size.
func slabClass(size int) int {
	return bits.TrailingZeros(uint(size))
}

// releaseSlabs trims the free list if it exceeds the given threshold.
// It returns the updated list and a list of any slabs that were removed and should be released.
func releaseSlabs(freeList [][]byte, threshold int) (newList [][]byte, toRelease [][]byte) {
	if threshold > 0 && len(freeList) > threshold {
		// Release half of the free slabs to prevent thrashing around the threshold.
		freeCount := len(freeList) / 2
		toRelease = slices.Clone(freeList[:freeCount])
		n := copy(freeList, freeList[freeCount:])
		clear(freeList[n:]) // Drop references to released slabs.
		return freeList[:n], toRelease
	}
	return freeList, nil
}
