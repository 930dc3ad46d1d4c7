package readat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func TestCursorLittleEndian(t *testing.T) {
	c := NewCursorFromBytes([]byte{
		0x01, 0x02, // u16
		0x01, 0x02, 0x03, 0x04, // u32
		0xff, 0xff, 0x00, 0x80, // two i16
		0x00, 0x00, 0x80, 0x3f, // f32 1.0
		'4', '3', 'D', 'M', // tag
	})

	if v := c.ReadU16(); v != 0x0201 {
		t.Errorf("ReadU16()=0x%x; expected 0x0201", v)
	}
	if v := c.ReadU32(); v != 0x04030201 {
		t.Errorf("ReadU32()=0x%x; expected 0x04030201", v)
	}
	if v := c.ReadI16s(2); v[0] != -1 || v[1] != -32768 {
		t.Errorf("ReadI16s(2)=%v; expected [-1 -32768]", v)
	}
	if v := c.ReadF32(); v != 1.0 {
		t.Errorf("ReadF32()=%v; expected 1", v)
	}
	if v := c.ReadTag(); string(v[:]) != "MD34" {
		t.Errorf("ReadTag()=%q; expected \"MD34\"", v[:])
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
	if c.Pos() != c.Size() {
		t.Errorf("Pos()=%d; expected %d", c.Pos(), c.Size())
	}
}

func TestCursorVec3(t *testing.T) {
	c := NewCursorFromBytes([]byte{
		0x00, 0x00, 0x80, 0x3f,
		0x00, 0x00, 0x00, 0x40,
		0x00, 0x00, 0x40, 0x40,
	})
	if v := c.ReadVec3(); v != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("ReadVec3()=%v; expected [1 2 3]", v)
	}
}

func TestCursorTruncation(t *testing.T) {
	c := NewCursorFromBytes([]byte{1, 2, 3})
	if v := c.ReadU32(); v != 0 {
		t.Errorf("truncated ReadU32()=%d; expected 0", v)
	}
	if !errors.Is(c.Err(), ErrTruncated) {
		t.Fatalf("Err()=%v; expected ErrTruncated", c.Err())
	}
	if c.ErrPos() != 0 {
		t.Errorf("ErrPos()=%d; expected 0", c.ErrPos())
	}

	// sticky: a read that would fit still reports the first failure
	c.ReadBytes(1)
	if !errors.Is(c.Err(), ErrTruncated) {
		t.Errorf("error was not sticky: %v", c.Err())
	}
}

func TestCursorSeekBounds(t *testing.T) {
	c := NewCursorFromBytes(make([]byte, 8))
	c.Seek(8)
	if c.Err() != nil {
		t.Fatalf("seek to end must be allowed: %v", c.Err())
	}
	c.Skip(1)
	if !errors.Is(c.Err(), ErrTruncated) {
		t.Errorf("seek past end: Err()=%v; expected ErrTruncated", c.Err())
	}
}

func TestCursorAtRestoresPosition(t *testing.T) {
	c := NewCursorFromBytes([]byte{0, 0, 0, 0, 7, 0, 0, 0})
	c.Skip(2)

	var got uint32
	if err := c.At(4, func() error {
		got = c.ReadU32()
		return c.Err()
	}); err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("value read inside At=%d; expected 7", got)
	}
	if c.Pos() != 2 {
		t.Errorf("Pos() after At=%d; expected 2", c.Pos())
	}

	failure := errors.New("nested failure")
	if err := c.At(6, func() error { return failure }); err != failure {
		t.Errorf("At returned %v; expected nested failure", err)
	}
	if c.Pos() != 2 {
		t.Errorf("Pos() after failed At=%d; expected 2", c.Pos())
	}
}
