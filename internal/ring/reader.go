package ring

import "io"

// Reader reads the bytes stored in a Ring, oldest first, without removing them.
// It implements the [io.Reader], [io.ByteReader] and [io.WriterTo] interface.
//
// A Reader tracks its position relative to the ring's tail, so it must be reset
// after the ring is modified.
type Reader[P SlabPooler] struct {
	r   *Ring[P] // Ring being read.
	off int      // Number of stored bytes already read.
}

func NewReader[P SlabPooler](r *Ring[P]) *Reader[P] {
	return &Reader[P]{r: r}
}

// Reset resets the reader to the oldest stored byte.
func (rd *Reader[P]) Reset() *Reader[P] {
	rd.off = 0
	return rd
}

// Len returns the number of unread bytes.
func (rd *Reader[P]) Len() int {
	return max(rd.r.length-rd.off, 0)
}

// pos returns the slab index of the next unread byte.
func (rd *Reader[P]) pos() int {
	return (rd.r.tail + rd.off) & rd.r.mask
}

// Read reads up to len(p) unread bytes into p and returns the number of bytes read.
func (rd *Reader[P]) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil // No-op
	}
	remaining := rd.Len()
	if remaining == 0 {
		return 0, io.EOF
	}
	n = min(len(p), remaining)
	read := copy(p[:n], rd.r.buf[rd.pos():])
	copy(p[read:n], rd.r.buf)
	rd.off += n
	return n, nil
}

// ReadByte reads a single byte.
func (rd *Reader[P]) ReadByte() (byte, error) {
	if rd.Len() == 0 {
		return 0, io.EOF
	}
	b := rd.r.buf[rd.pos()]
	rd.off++
	return b, nil
}

// WriteTo writes all unread bytes to w, in at most two writes: one up to the end of
// the slab and one for the part that wrapped around to its start.
func (rd *Reader[P]) WriteTo(w io.Writer) (n int64, err error) {
	for rd.Len() > 0 {
		start := rd.pos()
		end := min(start+rd.Len(), len(rd.r.buf))
		m, err := w.Write(rd.r.buf[start:end])
		rd.off += m
		n += int64(m)
		if err != nil {
			return n, err
		}
		if m < end-start {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}
