package fifo

import "github.com/holmberd/go-fifo/internal/ring"

// Config configures a Circular FIFO.
type Config struct {
	// Capacity is the fixed size of the FIFO in bytes. It must be a power of two,
	// since the read and write positions wrap around using a bitmask.
	Capacity int
}

// DefaultConfig returns the default Circular FIFO config.
func DefaultConfig() Config {
	return Config{Capacity: ring.DefaultCapacity}
}

// ListConfig configures a List FIFO.
type ListConfig struct {
	Capacity int // Number of nodes to preallocate; the pool grows beyond it on demand.
}

func DefaultSlabPoolConfig() SlabPoolConfig {
	var c SlabPoolConfig
	for i := range c.FreeThresholds {
		switch size := 1 << i; {
		case size < 64*KiB:
			c.FreeThresholds[i] = 64
		case size < MiB:
			c.FreeThresholds[i] = 16 // <= 8MB per class.
		default:
			c.FreeThresholds[i] = 4 // <= 64MB per class.
		}
	}
	return c
}
