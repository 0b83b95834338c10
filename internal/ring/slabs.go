package ring

// SlabPooler defines the contract for a memory pool that hands out power-of-two byte slabs.
type SlabPooler interface {
	MaxSize() int              // Returns the largest supported slab size.
	IsSupported(size int) bool // Checks if a slab size is supported.
	Get(size int) []byte       // Get retrieves a slab of the specified size.
	Put(s []byte)              // Put returns a slab to the pool.
}
