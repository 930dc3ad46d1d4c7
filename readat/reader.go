package readat

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var ErrTruncated = errors.New("read past end of data")

// Reader is a bounded view over io.ReaderAt.
// Reads that cross the end of the view fail with ErrTruncated.
type Reader struct {
	source io.ReaderAt
	offset int64
	size   int64
}

func NewReader(source io.ReaderAt, offset int64, size int64) *Reader {
	return &Reader{
		source: source,
		offset: offset,
		size:   size,
	}
}

func NewReaderFromBytes(b []byte) *Reader {
	return NewReader(bytes.NewReader(b), 0, int64(len(b)))
}

func (r *Reader) Offset() int64 { return r.offset }
func (r *Reader) Size() int64   { return r.size }

func (r *Reader) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(p)) > r.size {
		return 0, errors.Wrapf(ErrTruncated, "reading %d bytes at 0x%x (size 0x%x)", len(p), off, r.size)
	}
	n, err = r.source.ReadAt(p, r.offset+off)
	if n == len(p) {
		return n, nil
	}
	if err == nil || err == io.EOF {
		err = ErrTruncated
	}
	return n, errors.Wrapf(err, "reading %d bytes at 0x%x", len(p), off)
}
