package shoutcast

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestOffsetReader_CountsDeliveredBytes(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 10)
	o := NewOffsetReader(iotest.HalfReader(bytes.NewReader(data)))

	buf := make([]byte, 7)
	var total int64
	for {
		n, err := o.Read(buf)
		total += int64(n)
		if o.Offset() != total {
			t.Fatalf("offset %d, delivered %d", o.Offset(), total)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}

	if total != int64(len(data)) {
		t.Errorf("expected %d bytes, got %d", len(data), total)
	}
}

func TestOffsetReader_Skip(t *testing.T) {
	o := NewOffsetReader(strings.NewReader("abcdefgh"))

	n, err := o.Skip(3)
	if err != nil || n != 3 {
		t.Fatalf("skip: n=%d err=%v", n, err)
	}
	if o.Offset() != 3 {
		t.Errorf("expected offset 3, got %d", o.Offset())
	}

	b, err := o.ReadByte()
	if err != nil || b != 'd' {
		t.Fatalf("expected 'd', got %q (%v)", b, err)
	}

	// skipping past the end only counts what was there
	n, _ = o.Skip(100)
	if n != 4 {
		t.Errorf("expected 4 skipped bytes, got %d", n)
	}
	if o.Offset() != 8 {
		t.Errorf("expected offset 8, got %d", o.Offset())
	}
}

func TestOffsetReader_MarkReset(t *testing.T) {
	o := NewOffsetReader(strings.NewReader("abcdefgh"))

	if _, err := o.Skip(2); err != nil {
		t.Fatal(err)
	}
	if err := o.Mark(); err != nil {
		t.Fatalf("mark: %v", err)
	}

	first := make([]byte, 4)
	if _, err := io.ReadFull(o, first); err != nil {
		t.Fatal(err)
	}
	if o.Offset() != 6 {
		t.Fatalf("expected offset 6, got %d", o.Offset())
	}

	if err := o.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if o.Offset() != 2 {
		t.Errorf("expected offset back at 2, got %d", o.Offset())
	}

	again := make([]byte, 4)
	if _, err := io.ReadFull(o, again); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again) {
		t.Errorf("expected %q after reset, got %q", first, again)
	}
}

func TestOffsetReader_MarkUnsupported(t *testing.T) {
	o := NewOffsetReader(iotest.OneByteReader(strings.NewReader("abc")))

	if err := o.Mark(); err != ErrMarkNotSupported {
		t.Errorf("expected ErrMarkNotSupported, got %v", err)
	}
	if err := o.Reset(); err != ErrNotMarked {
		t.Errorf("expected ErrNotMarked, got %v", err)
	}
}
