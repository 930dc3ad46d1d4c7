package m3

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mogaika/m3_browser/readat"
	"github.com/mogaika/m3_browser/utils"
)

// File is the result of one successful parse.
type File struct {
	Name        string
	Session     uuid.UUID
	Header      *Header
	Table       *ReferenceTable
	Model       *Model
	Submeshes   []Submesh
	Diagnostics []string
}

type Option func(s *Session)

func WithLogger(l *utils.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session owns the cursor and reference table of a single parse.
// It is used once and then discarded.
type Session struct {
	ID   uuid.UUID
	name string
	c    *readat.Cursor
	log  *utils.Logger
}

func NewSession(name string, r io.ReaderAt, size int64, opts ...Option) *Session {
	s := &Session{
		ID:   uuid.New(),
		name: name,
		c:    readat.NewCursor(r, size),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run decodes header, table, model and submeshes.
// Either the complete File or an error is returned.
func (s *Session) Run() (*File, error) {
	s.log.Printf("[m3] session %v: parsing '%s' (0x%x bytes)", s.ID, s.name, s.c.Size())

	h, err := readHeader(s.c)
	if err != nil {
		return nil, err
	}
	table, err := readReferenceTable(s.c, h)
	if err != nil {
		return nil, err
	}

	d := &decoder{c: s.c, table: table, log: s.log}
	if h.ModelCount != 1 {
		d.warnf("header declares %d models, decoding model entry %d only", h.ModelCount, h.ModelIndex)
	}
	if int64(h.ModelIndex) >= int64(table.Len()) {
		return nil, newError(OutOfRangeReference, 0x10,
			"model index %d outside table of %d entries", h.ModelIndex, table.Len())
	}
	modelEntry := table.Entry(int(h.ModelIndex))
	if modelEntry.Tag != TagMODL {
		d.warnf("model entry %d has tag %s", h.ModelIndex, modelEntry.Tag)
	}

	model, err := d.readModel(modelEntry)
	if err != nil {
		return nil, err
	}

	submeshes, err := AssembleSubmeshes(baseName(s.name), model)
	if err != nil {
		return nil, err
	}

	s.log.Printf("[m3] session %v: %d vertices, %d submeshes, %d materials, %d diagnostics",
		s.ID, len(model.Vertices), len(submeshes), len(model.Materials), len(d.diagnostics))

	return &File{
		Name:        s.name,
		Session:     s.ID,
		Header:      h,
		Table:       table,
		Model:       model,
		Submeshes:   submeshes,
		Diagnostics: d.diagnostics,
	}, nil
}

func Parse(name string, r io.ReaderAt, size int64, opts ...Option) (*File, error) {
	return NewSession(name, r, size, opts...).Run()
}

func NewFromData(name string, data []byte, opts ...Option) (*File, error) {
	return Parse(name, bytes.NewReader(data), int64(len(data)), opts...)
}

func baseName(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
