package m3

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MODEL_PREFIX_SIZE   = 0x60
	MODEL_RESERVED_SIZE = 0x3c
)

type BoundingSphere struct {
	Min    mgl32.Vec3
	Max    mgl32.Vec3
	Radius float32
	Flags  uint32
}

// Model is the decoded MODL chunk of version 23.
type Model struct {
	Flags        uint32
	VertexFormat VertexFormat
	VertexRef    Reference
	Vertices     []Vertex
	Division     Division
	Bones        Passthrough
	Bounds       BoundingSphere

	Attachments      Passthrough
	AttachmentLookup Passthrough
	Lights           Passthrough
	SHBX             Passthrough
	Cameras          Passthrough
	D                Passthrough
	MaterialLookup   []MaterialLookup
	Materials        []Material
	Displacement     Passthrough
	CMP              Passthrough
	TER              Passthrough
	VOL              Passthrough
}

func (d *decoder) readModel(e ReferenceEntry) (*Model, error) {
	if e.Type != MODEL_TYPE_MODL23 {
		return nil, newError(FormatError, int64(e.Offset), "unsupported model format: type %d (0x%x)", e.Type, e.Type)
	}

	m := &Model{}
	err := d.c.At(int64(e.Offset), func() error {
		return d.readModelFields(m)
	})
	if err != nil {
		return nil, withContext(asError(err, int64(e.Offset)), "model at 0x%x", e.Offset)
	}
	return m, nil
}

func (d *decoder) readModelFields(m *Model) error {
	var err error

	d.c.Skip(MODEL_PREFIX_SIZE)
	m.Flags = d.c.ReadU32()
	if m.VertexRef, err = d.readReference(); err != nil {
		return err
	}

	divs, err := resolveAs[[]Division](d, TagDIV)
	if err != nil {
		return withContext(err, "division")
	}
	if len(divs) != 1 {
		return newError(FormatError, d.c.Pos()-REFERENCE_SIZE, "expected exactly one division, got %d", len(divs))
	}
	m.Division = divs[0]

	if m.Bones, err = d.resolvePassthrough(); err != nil {
		return withContext(err, "bones")
	}

	m.Bounds.Min = d.c.ReadVec3()
	m.Bounds.Max = d.c.ReadVec3()
	m.Bounds.Radius = d.c.ReadF32()
	m.Bounds.Flags = d.c.ReadU32()
	d.c.Skip(MODEL_RESERVED_SIZE)
	if err := d.check(); err != nil {
		return err
	}

	for _, p := range []struct {
		name string
		dst  *Passthrough
	}{
		{"attachments", &m.Attachments},
		{"attachment lookup", &m.AttachmentLookup},
		{"lights", &m.Lights},
		{"shbx", &m.SHBX},
		{"cameras", &m.Cameras},
		{"d", &m.D},
	} {
		if *p.dst, err = d.resolvePassthrough(); err != nil {
			return withContext(err, p.name)
		}
	}

	if m.MaterialLookup, err = resolveAs[[]MaterialLookup](d, TagMATM); err != nil {
		return withContext(err, "material lookup")
	}
	if m.Materials, err = resolveAs[[]Material](d, TagMAT); err != nil {
		return withContext(err, "materials")
	}

	for _, p := range []struct {
		name string
		dst  *Passthrough
	}{
		{"displacement", &m.Displacement},
		{"cmp", &m.CMP},
		{"ter", &m.TER},
		{"vol", &m.VOL},
	} {
		if *p.dst, err = d.resolvePassthrough(); err != nil {
			return withContext(err, p.name)
		}
	}

	if m.Vertices, m.VertexFormat, err = d.readVertices(m.VertexRef, m.Flags); err != nil {
		return withContext(err, "vertices")
	}
	return nil
}
