package readat

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Cursor is a positioned little-endian decoder over a Reader.
//
// Errors are sticky: the first failed read or seek is remembered,
// every later read returns zero values and Err reports the failure.
// Callers check Err once per decoded record.
type Cursor struct {
	r      *Reader
	pos    int64
	err    error
	errPos int64
}

func NewCursor(source io.ReaderAt, size int64) *Cursor {
	return &Cursor{r: NewReader(source, 0, size)}
}

func NewCursorFromBytes(b []byte) *Cursor {
	return &Cursor{r: NewReaderFromBytes(b)}
}

func (c *Cursor) Pos() int64  { return c.pos }
func (c *Cursor) Size() int64 { return c.r.Size() }
func (c *Cursor) Err() error  { return c.err }

// ErrPos is the position where the first failure happened.
func (c *Cursor) ErrPos() int64 { return c.errPos }

func (c *Cursor) fail(err error) {
	if c.err == nil {
		c.err = err
		c.errPos = c.pos
	}
}

func (c *Cursor) Seek(pos int64) {
	if pos < 0 || pos > c.r.Size() {
		c.fail(errors.Wrapf(ErrTruncated, "seek to 0x%x (size 0x%x)", pos, c.r.Size()))
		return
	}
	c.pos = pos
}

func (c *Cursor) Skip(delta int64) {
	c.Seek(c.pos + delta)
}

// At runs fn with the cursor moved to pos and puts the cursor back
// where it was afterwards, on every exit path.
func (c *Cursor) At(pos int64, fn func() error) error {
	saved := c.pos
	defer func() { c.pos = saved }()

	c.Seek(pos)
	if c.err != nil {
		return c.err
	}
	return fn()
}

func (c *Cursor) ReadBytes(n int) []byte {
	if c.err != nil {
		return make([]byte, n)
	}
	if n < 0 {
		c.fail(errors.Errorf("negative read length %d", n))
		return nil
	}
	buf := make([]byte, n)
	if _, err := c.r.ReadAt(buf, c.pos); err != nil {
		c.fail(err)
		return buf
	}
	c.pos += int64(n)
	return buf
}

func (c *Cursor) ReadU8s(n int) []uint8 { return c.ReadBytes(n) }

func (c *Cursor) ReadU16() uint16 {
	return binary.LittleEndian.Uint16(c.ReadBytes(2))
}

func (c *Cursor) ReadU16s(n int) []uint16 {
	b := c.ReadBytes(n * 2)
	r := make([]uint16, n)
	for i := range r {
		r[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return r
}

func (c *Cursor) ReadI16s(n int) []int16 {
	b := c.ReadBytes(n * 2)
	r := make([]int16, n)
	for i := range r {
		r[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return r
}

func (c *Cursor) ReadU32() uint32 {
	return binary.LittleEndian.Uint32(c.ReadBytes(4))
}

func (c *Cursor) ReadF32() float32 {
	return math.Float32frombits(c.ReadU32())
}

func (c *Cursor) ReadVec3() mgl32.Vec3 {
	return mgl32.Vec3{c.ReadF32(), c.ReadF32(), c.ReadF32()}
}

// ReadTag reads a 4 byte identifier. Tags are stored byte-reversed.
func (c *Cursor) ReadTag() [4]byte {
	b := c.ReadBytes(4)
	return [4]byte{b[3], b[2], b[1], b[0]}
}
