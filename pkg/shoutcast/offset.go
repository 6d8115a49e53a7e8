package shoutcast

import (
	"errors"
	"io"
)

var (
	// ErrMarkNotSupported is returned by Mark when the underlying reader cannot seek.
	ErrMarkNotSupported = errors.New("shoutcast: mark not supported by underlying reader")
	// ErrNotMarked is returned by Reset when Mark was never called.
	ErrNotMarked = errors.New("shoutcast: reset without mark")
)

// OffsetReader is a pass-through reader that counts the bytes it delivered.
// It is not safe for concurrent use.
type OffsetReader struct {
	r      io.Reader
	offset int64

	marked     bool
	markOffset int64
	markPos    int64
}

// NewOffsetReader wraps r.
func NewOffsetReader(r io.Reader) *OffsetReader {
	return &OffsetReader{r: r}
}

// Offset returns the number of bytes delivered so far.
func (o *OffsetReader) Offset() int64 {
	return o.offset
}

// Read implements io.Reader. The offset grows by the bytes actually read.
func (o *OffsetReader) Read(p []byte) (int, error) {
	n, err := o.r.Read(p)
	o.offset += int64(n)
	return n, err
}

// ReadByte reads a single byte.
func (o *OffsetReader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(o, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip discards up to n bytes and returns how many were skipped.
func (o *OffsetReader) Skip(n int64) (int64, error) {
	return io.CopyN(io.Discard, o, n)
}

// Mark remembers the current offset. Reset returns to it, which requires the
// underlying reader to implement io.Seeker.
func (o *OffsetReader) Mark() error {
	s, ok := o.r.(io.Seeker)
	if !ok {
		return ErrMarkNotSupported
	}

	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	o.marked = true
	o.markOffset = o.offset
	o.markPos = pos

	return nil
}

// Reset rewinds the underlying reader and the offset to the last mark.
func (o *OffsetReader) Reset() error {
	if !o.marked {
		return ErrNotMarked
	}

	s, ok := o.r.(io.Seeker)
	if !ok {
		return ErrMarkNotSupported
	}

	if _, err := s.Seek(o.markPos, io.SeekStart); err != nil {
		return err
	}
	o.offset = o.markOffset

	return nil
}
