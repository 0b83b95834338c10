package testutils

import "sync/atomic"

// MockMaxSlabSize is the largest slab size supported by MockSlabPool.
const MockMaxSlabSize = 4096

// MockSlabPool is a heap-backed slab pool that counts Get and Put calls.
type MockSlabPool struct {
	getCalls atomic.Int64
	putCalls atomic.Int64
}

func (p *MockSlabPool) MaxSize() int {
	return MockMaxSlabSize
}

func (p *MockSlabPool) IsSupported(size int) bool {
	return size > 0 && size <= MockMaxSlabSize && size&(size-1) == 0
}

func (p *MockSlabPool) Get(size int) []byte {
	p.getCalls.Add(1)
	return make([]byte, size)
}

func (p *MockSlabPool) Put(s []byte) {
	p.putCalls.Add(1)
}

func (p *MockSlabPool) GetCalls() int64 {
	return p.getCalls.Load()
}

func (p *MockSlabPool) PutCalls() int64 {
	return p.putCalls.Load()
}

func (p *MockSlabPool) SlabsInUse() int64 {
	return p.GetCalls() - p.PutCalls()
}

func (p *MockSlabPool) Reset() {
	p.getCalls.Store(0)
	p.putCalls.Store(0)
}
