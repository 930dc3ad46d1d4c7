package m3

import (
	"github.com/goccy/go-json"

	"github.com/mogaika/m3_browser/readat"
)

// Tag is a chunk identifier in reading order ("MD34", "REGN", ...).
type Tag [4]byte

func (t Tag) String() string { return string(t[:]) }

func (t Tag) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t Tag) MarshalYAML() (interface{}, error) { return t.String(), nil }

func NewTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

var (
	TagMD34 = NewTag("MD34")
	TagMODL = NewTag("MODL")
	TagCHAR = NewTag("CHAR")
	TagLAYR = NewTag("LAYR")
	TagMAT  = NewTag("MAT_")
	TagMATM = NewTag("MATM")
	TagREGN = NewTag("REGN")
	TagBAT  = NewTag("BAT_")
	TagDIV  = NewTag("DIV_")
	TagMSEC = NewTag("MSEC")
	TagU16  = NewTag("U16_")
	TagU8   = NewTag("U8__")
)

const (
	HEADER_SIZE          = 0x14
	REFERENCE_ENTRY_SIZE = 0x10

	MODEL_TYPE_MODL23 = 23
)

type Header struct {
	Id                   Tag
	ReferenceTableOffset uint32
	ReferenceTableCount  uint32
	ModelCount           uint32
	ModelIndex           uint32
}

type ReferenceEntry struct {
	Tag    Tag
	Offset uint32
	Count  uint32
	Type   uint32
}

// ReferenceTable is the file wide chunk index. Index 0 is the empty sentinel.
// It is filled once while reading the header and never changes afterwards.
type ReferenceTable struct {
	entries []ReferenceEntry
}

func (t *ReferenceTable) Len() int { return len(t.entries) }

func (t *ReferenceTable) Entry(i int) ReferenceEntry { return t.entries[i] }

func (t *ReferenceTable) Entries() []ReferenceEntry {
	r := make([]ReferenceEntry, len(t.entries))
	copy(r, t.entries)
	return r
}

func (t *ReferenceTable) MarshalJSON() ([]byte, error) { return json.Marshal(t.entries) }

func (t *ReferenceTable) MarshalYAML() (interface{}, error) { return t.entries, nil }

func readHeader(c *readat.Cursor) (*Header, error) {
	h := &Header{
		Id:                   c.ReadTag(),
		ReferenceTableOffset: c.ReadU32(),
		ReferenceTableCount:  c.ReadU32(),
		ModelCount:           c.ReadU32(),
		ModelIndex:           c.ReadU32(),
	}
	if err := c.Err(); err != nil {
		return nil, asError(err, c.ErrPos())
	}
	if h.Id != TagMD34 {
		return nil, newError(FormatError, 0, "unsupported file format: magic %q, expected %q", h.Id, TagMD34)
	}
	return h, nil
}

func readReferenceEntry(c *readat.Cursor) ReferenceEntry {
	return ReferenceEntry{
		Tag:    c.ReadTag(),
		Offset: c.ReadU32(),
		Count:  c.ReadU32(),
		Type:   c.ReadU32(),
	}
}

func readReferenceTable(c *readat.Cursor, h *Header) (*ReferenceTable, error) {
	tableEnd := int64(h.ReferenceTableOffset) + int64(h.ReferenceTableCount)*REFERENCE_ENTRY_SIZE
	if tableEnd > c.Size() {
		return nil, newError(Truncation, int64(h.ReferenceTableOffset),
			"reference table of %d entries ends at 0x%x past file size 0x%x", h.ReferenceTableCount, tableEnd, c.Size())
	}

	c.Seek(int64(h.ReferenceTableOffset))

	entries := make([]ReferenceEntry, 0, h.ReferenceTableCount)
	for i := uint32(0); i < h.ReferenceTableCount; i++ {
		pos := c.Pos()
		e := readReferenceEntry(c)
		if err := c.Err(); err != nil {
			return nil, asError(err, c.ErrPos())
		}
		if int64(e.Offset) > c.Size() {
			return nil, newError(FormatError, pos,
				"reference entry %d (%s) offset 0x%x outside file of size 0x%x", i, e.Tag, e.Offset, c.Size())
		}
		entries = append(entries, e)
	}

	return &ReferenceTable{entries: entries}, nil
}
