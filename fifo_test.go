package fifo

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/holmberd/go-fifo/internal/testutils"
)

func TestCircularEnqueueAndDequeue(t *testing.T) {
	c, err := NewCircular(128)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	testCases := []struct {
		name        string
		data        []byte
		nbyte       int
		expectedN   int
		expectedErr error
	}{
		{"Valid data", []byte("element1_enqueue*"), 17, 17, nil},
		{"Partial data", []byte("element2_enqueue*"), 8, 8, nil},
		{"Zero bytes", []byte("abc"), 0, 0, nil},
		{"Empty data", []byte{}, 0, 0, nil},
		{"Nil data", nil, 17, 0, ErrNilData},
		{"Negative count", []byte("abc"), -1, 0, ErrInvalidLength},
		{"Count exceeds data", []byte("abc"), 4, 0, ErrInvalidLength},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer c.Reset()
			n, err := c.Enqueue(tc.data, tc.nbyte)
			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
			if n != tc.expectedN || c.Len() != tc.expectedN {
				t.Fatalf("expected %d bytes enqueued, got n=%d len=%d", tc.expectedN, n, c.Len())
			}
			if err != nil {
				return
			}

			got := make([]byte, c.Cap())
			n, err = c.Dequeue(got, len(got))
			if err != nil {
				t.Fatalf("failed to dequeue: %v", err)
			}
			if !bytes.Equal(got[:n], tc.data[:tc.nbyte]) {
				t.Errorf("expected %q, got %q", tc.data[:tc.nbyte], got[:n])
			}
		})
	}
}

func TestCircularInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0, 6, 100, MaxSlabSize * 2} {
		if _, err := NewCircular(capacity); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("capacity %d: expected error %q, got %v", capacity, ErrInvalidCapacity, err)
		}
	}
}

func TestCircularFullBoundary(t *testing.T) {
	c, err := NewCircular(8)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if n, err := c.Enqueue([]byte("0123456789"), 10); err != nil || n != 8 {
		t.Fatalf("expected (8, nil), got (%d, %v)", n, err)
	}
	if _, err := c.Enqueue([]byte("x"), 1); !errors.Is(err, ErrFull) {
		t.Errorf("expected error %q, got %v", ErrFull, err)
	}
	if n, err := c.Enqueue([]byte("x"), 0); err != nil || n != 0 {
		t.Errorf("expected (0, nil), got (%d, %v)", n, err)
	}
	if c.Len() != 8 {
		t.Errorf("expected length 8, got %d", c.Len())
	}
}

func TestCircularWraparound(t *testing.T) {
	c, err := NewCircular(8)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	dest := make([]byte, 8)
	c.Enqueue([]byte("ABCDEFGH"), 8)
	c.Dequeue(dest, 5)
	c.Enqueue([]byte("IJKLM"), 5)
	n, err := c.Dequeue(dest, 8)
	if err != nil {
		t.Fatalf("failed to dequeue: %v", err)
	}
	if string(dest[:n]) != "FGHIJKLM" {
		t.Errorf("expected %q, got %q", "FGHIJKLM", dest[:n])
	}
}

func TestCircularOverRequest(t *testing.T) {
	c, err := NewCircular(128)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Enqueue(bytes.Repeat([]byte("z"), 24), 24)
	n, err := c.Dequeue(make([]byte, 30), 30)
	if err != nil || n != 24 {
		t.Fatalf("expected (24, nil), got (%d, %v)", n, err)
	}
	if c.Len() != 0 {
		t.Errorf("expected length 0, got %d", c.Len())
	}
	if n, err := c.Dequeue(make([]byte, 30), 30); err != nil || n != 0 {
		t.Errorf("expected (0, nil) from empty FIFO, got (%d, %v)", n, err)
	}
}

func TestCircularReadWriter(t *testing.T) {
	c, err := NewCircular(16)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	t.Run("Write", func(t *testing.T) {
		defer c.Reset()
		if n, err := c.Write(nil); n != 0 || err != nil {
			t.Errorf("expected (0, nil) for empty write, got (%d, %v)", n, err)
		}
		n, err := c.Write([]byte("0123456789abcdefXYZ"))
		if !errors.Is(err, ErrFull) || n != 16 {
			t.Errorf("expected (16, %q), got (%d, %v)", ErrFull, n, err)
		}
	})

	t.Run("Read until EOF", func(t *testing.T) {
		defer c.Reset()
		c.Write([]byte("hello"))
		got, err := io.ReadAll(c)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "hello" {
			t.Errorf("expected %q, got %q", "hello", got)
		}
		if n, err := c.Read(nil); n != 0 || err != nil {
			t.Errorf("expected (0, nil) for empty read, got (%d, %v)", n, err)
		}
	})

	t.Run("Pipe through wraparound", func(t *testing.T) {
		defer c.Reset()
		payload := []byte(strings.Repeat("the quick brown fox ", 20))
		var out bytes.Buffer
		buf := make([]byte, 5)
		for rest := payload; len(rest) > 0; {
			n, err := c.Write(rest[:min(len(rest), 11)])
			if err != nil && !errors.Is(err, ErrFull) {
				t.Fatal(err)
			}
			rest = rest[n:]
			m, _ := c.Read(buf)
			out.Write(buf[:m])
		}
		io.Copy(&out, c)
		if !bytes.Equal(out.Bytes(), payload) {
			t.Errorf("expected %q, got %q", payload, out.Bytes())
		}
	})
}

func TestCircularSnapshotAndChecksum(t *testing.T) {
	c, err := NewCircular(8)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Enqueue([]byte("abcdefgh"), 8)
	s := c.Snapshot()
	if !s.Full || s.Length != 8 || string(s.Data) != "abcdefgh" {
		t.Errorf("unexpected snapshot: %+v", s)
	}
	if want := xxhash.Sum64String("abcdefgh"); c.Checksum() != want || s.Checksum != want {
		t.Errorf("expected checksum %x, got %x", want, c.Checksum())
	}

	var sb strings.Builder
	c.Print(&sb)
	if !strings.Contains(sb.String(), "0: [61 62 63 64 65 66 67 68]") {
		t.Errorf("unexpected dump: %q", sb.String())
	}
}

func TestCircularCustomPool(t *testing.T) {
	pool := &testutils.MockSlabPool{}
	c, err := CustomCircular(pool, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if c.Cap() != DefaultConfig().Capacity {
		t.Errorf("expected capacity %d, got %d", DefaultConfig().Capacity, c.Cap())
	}
	if pool.SlabsInUse() != 1 {
		t.Errorf("expected 1 slab in use, got %d", pool.SlabsInUse())
	}
	c.Close()
	if pool.SlabsInUse() != 0 {
		t.Errorf("expected 0 slabs in use after close (leak detected), got %d", pool.SlabsInUse())
	}
	if _, err := c.Enqueue([]byte("a"), 1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected error %q, got %v", ErrClosed, err)
	}
}

func TestCircularReusesPooledSlabs(t *testing.T) {
	pool := newTestSlabPool(10)
	t.Cleanup(pool.Release)
	for range 3 {
		c, err := CustomCircular(pool, Config{Capacity: 64 * KiB})
		if err != nil {
			t.Fatal(err)
		}
		c.Enqueue([]byte("data"), 4)
		c.Close()
	}
	if numFree := pool.numFree(64 * KiB); numFree != 1 {
		t.Errorf("expected the slab to be recycled, got %d free slabs", numFree)
	}
}

func TestListEnqueueAndDequeue(t *testing.T) {
	l, err := NewList(3)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Destroy()

	type item struct{ id int }
	items := []*item{{1}, {2}, {3}, {4}}
	for i, it := range items {
		n, err := l.Enqueue(it)
		if err != nil {
			t.Fatalf("failed to enqueue: %v", err)
		}
		if n != i+1 {
			t.Errorf("expected new length %d, got %d", i+1, n)
		}
	}
	if l.Cap() != 4 || l.Len() != 4 {
		t.Fatalf("expected cap=4 len=4, got cap=%d len=%d", l.Cap(), l.Len())
	}
	for _, want := range items {
		got, ok := l.Dequeue()
		if !ok || got.(*item) != want {
			t.Fatalf("expected (%v, true), got (%v, %t)", want, got, ok)
		}
	}
	if _, ok := l.Dequeue(); ok {
		t.Error("expected empty FIFO")
	}
	if l.Cap() != 4 {
		t.Errorf("expected the pool to not shrink, got cap=%d", l.Cap())
	}
	if err := l.Verify(); err != nil {
		t.Errorf("expected a consistent pool, got %v", err)
	}
}

func TestListInvalidInput(t *testing.T) {
	if l, err := NewList(-1); !errors.Is(err, ErrNegativeCapacity) || l != nil {
		t.Errorf("expected (nil, %q), got (%v, %v)", ErrNegativeCapacity, l, err)
	}

	l, err := NewList(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Enqueue(nil); !errors.Is(err, ErrNilElement) {
		t.Errorf("expected error %q, got %v", ErrNilElement, err)
	}
	if l.Len() != 0 || l.Cap() != 1 {
		t.Errorf("expected state to be unchanged, got cap=%d len=%d", l.Cap(), l.Len())
	}

	l.Destroy()
	if _, err := l.Enqueue("x"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected error %q, got %v", ErrDestroyed, err)
	}
}

func TestListSnapshotAndPrint(t *testing.T) {
	l, err := CustomList(ListConfig{Capacity: 2}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Destroy()

	l.Enqueue("a")
	l.Enqueue("b")
	l.Dequeue()
	s := l.Snapshot()
	if s.Capacity != 2 || s.Length != 1 || s.Free != 1 || len(s.Elements) != 1 || s.Elements[0] != "b" {
		t.Errorf("unexpected snapshot: %+v", s)
	}

	var sb strings.Builder
	l.Print(&sb)
	want := "--- List (cap=2 len=1 free=1) ---\n0: b\n"
	if sb.String() != want {
		t.Errorf("expected %q, got %q", want, sb.String())
	}
}
