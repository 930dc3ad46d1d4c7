package m3

import (
	"github.com/pkg/errors"

	"github.com/mogaika/m3_browser/readat"
	"github.com/mogaika/m3_browser/utils"
)

const REFERENCE_SIZE = 0xc

// Reference is the inline (count, index, flags) descriptor pointing into the table.
type Reference struct {
	Count uint32
	Index uint32
	Flags uint32
}

// Unresolved stands in for chunk content that was not decoded.
type Unresolved struct {
	Entry ReferenceEntry
}

// Passthrough keeps a reference the mesh reconstruction does not interpret.
type Passthrough struct {
	Ref     Reference
	Entry   *ReferenceEntry `json:",omitempty" yaml:",omitempty"`
	Content interface{}     `json:"-" yaml:"-"`
}

type decoder struct {
	c     *readat.Cursor
	table *ReferenceTable
	log   *utils.Logger

	// table indices whose chunks are being decoded
	active map[uint32]bool

	diagnostics []string
}

func (d *decoder) warnf(format string, args ...interface{}) {
	msg := errors.Errorf(format, args...).Error()
	d.diagnostics = append(d.diagnostics, msg)
	d.log.Printf("[m3] 0x%.8x: %s", d.c.Pos(), msg)
}

// check converts a sticky cursor failure into a typed error.
func (d *decoder) check() error {
	if err := d.c.Err(); err != nil {
		return asError(err, d.c.ErrPos())
	}
	return nil
}

func (d *decoder) readReference() (Reference, error) {
	ref := Reference{
		Count: d.c.ReadU32(),
		Index: d.c.ReadU32(),
		Flags: d.c.ReadU32(),
	}
	return ref, d.check()
}

// entry looks the reference up. ok is false for the empty reference.
func (d *decoder) entry(ref Reference) (e ReferenceEntry, ok bool, err error) {
	if ref.Index == 0 {
		return e, false, nil
	}
	if int(ref.Index) >= d.table.Len() || int(ref.Index) < 0 {
		return e, false, newError(OutOfRangeReference, d.c.Pos()-REFERENCE_SIZE,
			"reference index %d outside table of %d entries", ref.Index, d.table.Len())
	}
	return d.table.Entry(int(ref.Index)), true, nil
}

// decodeEntry decodes the chunk of table entry index at its offset and restores the cursor afterwards.
// Unknown tags produce Unresolved. A chunk referencing itself, directly or through
// other chunks, is a format error.
func (d *decoder) decodeEntry(index uint32, e ReferenceEntry) (interface{}, error) {
	dec, known := chunkDecoders[e.Tag]
	if !known {
		d.warnf("unsupported reference format %s (count %d, offset 0x%x)", e.Tag, e.Count, e.Offset)
		return Unresolved{Entry: e}, nil
	}

	if d.active[index] {
		return nil, newError(FormatError, int64(e.Offset), "reference cycle through entry %d (%s)", index, e.Tag)
	}
	if d.active == nil {
		d.active = make(map[uint32]bool)
	}
	d.active[index] = true
	defer delete(d.active, index)

	var result interface{}
	err := d.c.At(int64(e.Offset), func() error {
		var err error
		result, err = dec(d, e)
		if err == nil {
			err = d.check()
		}
		return err
	})
	if err != nil {
		return nil, withContext(asError(err, int64(e.Offset)), "decoding %s at 0x%x", e.Tag, e.Offset)
	}
	return result, nil
}

// resolve reads a descriptor at the cursor and decodes what it points to.
// The cursor ends up just past the descriptor.
func (d *decoder) resolve() (interface{}, *ReferenceEntry, Reference, error) {
	ref, err := d.readReference()
	if err != nil {
		return nil, nil, ref, err
	}
	e, ok, err := d.entry(ref)
	if err != nil || !ok {
		return nil, nil, ref, err
	}
	v, err := d.decodeEntry(ref.Index, e)
	return v, &e, ref, err
}

func (d *decoder) resolvePassthrough() (Passthrough, error) {
	v, e, ref, err := d.resolve()
	return Passthrough{Ref: ref, Entry: e, Content: v}, err
}

// resolveAs resolves a reference whose chunk is required to carry the expected tag.
// The empty reference gives the zero value of T.
func resolveAs[T any](d *decoder, expected Tag) (T, error) {
	var zero T

	descPos := d.c.Pos()
	ref, err := d.readReference()
	if err != nil {
		return zero, err
	}
	e, ok, err := d.entry(ref)
	if err != nil || !ok {
		return zero, err
	}
	if e.Tag != expected {
		if _, known := chunkDecoders[e.Tag]; !known {
			// fatal here, the content is required
			return zero, &Error{Kind: FormatError, Offset: descPos, Err: newError(UnknownChunkTag, int64(e.Offset),
				"reference %d points to unknown chunk %s, expected %s", ref.Index, e.Tag, expected)}
		}
		return zero, newError(FormatError, descPos,
			"reference %d points to %s, expected %s", ref.Index, e.Tag, expected)
	}

	v, err := d.decodeEntry(ref.Index, e)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, newError(FormatError, int64(e.Offset), "chunk %s decoded to %T, expected %T", e.Tag, v, zero)
	}
	return t, nil
}
