package ring

import "fmt"

// DefaultCapacity is the ring capacity used by DefaultConfig, in bytes.
const DefaultCapacity = 128

type Config struct {
	// Capacity is the fixed size of the ring in bytes.
	//
	// It must be a power of two so that index wraparound can be computed with a
	// bitmask instead of a modulo, and it must be a slab size supported by the pool.
	Capacity int
}

func (c Config) Validate(pool SlabPooler) error {
	if !isPowerOfTwo(c.Capacity) {
		return fmt.Errorf("invalid config: capacity %d: %w", c.Capacity, ErrInvalidCapacity)
	}
	if !pool.IsSupported(c.Capacity) {
		return fmt.Errorf(
			"invalid config: capacity %d is not a supported slab size (max %d): %w",
			c.Capacity,
			pool.MaxSize(),
			ErrInvalidCapacity,
		)
	}
	return nil
}

func DefaultConfig() Config {
	return Config{
		Capacity: DefaultCapacity,
	}
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
