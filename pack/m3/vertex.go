package m3

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	VERTEX_FLAG_EXTRA = 0x200

	VERTEX_FLAG_32 = 0x20000
	VERTEX_FLAG_36 = 0x40000
	VERTEX_FLAG_40 = 0x80000
	VERTEX_FLAG_44 = 0x100000

	VERTEX_UV_SCALE = 2048.0
)

// VertexFormat is selected by exactly one of the VERTEX_FLAG_{32,36,40,44} bits.
// Stride is the size of one vertex record in the buffer, including the extra word.
type VertexFormat struct {
	Flag    uint32
	Stride  uint32
	UVCount int
	Extra   bool
}

var vertexFormats = []VertexFormat{
	{Flag: VERTEX_FLAG_32, Stride: 32, UVCount: 1},
	{Flag: VERTEX_FLAG_36, Stride: 36, UVCount: 2},
	{Flag: VERTEX_FLAG_40, Stride: 40, UVCount: 3},
	{Flag: VERTEX_FLAG_44, Stride: 44, UVCount: 4},
}

func vertexFormatFromFlags(flags uint32) (VertexFormat, error) {
	var found []VertexFormat
	for _, f := range vertexFormats {
		if flags&f.Flag != 0 {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 0:
		return VertexFormat{}, newError(UnsupportedFeature, 0, "unsupported vertex format: flags 0x%x", flags)
	case 1:
		f := found[0]
		if flags&VERTEX_FLAG_EXTRA != 0 {
			// 4 bytes between the uv sets and the tangent
			f.Extra = true
			f.Stride += 4
		}
		return f, nil
	default:
		return VertexFormat{}, newError(UnsupportedFeature, 0, "ambiguous vertex format: flags 0x%x select %d strides", flags, len(found))
	}
}

type Vertex struct {
	Position   mgl32.Vec3
	BoneWeight [4]uint8
	BoneIndex  [4]uint8
	Normal     [4]uint8
	UV         [][2]float32
	Tangent    [4]uint8
}

func decodeUV(u, v int16) [2]float32 {
	return [2]float32{float32(u) / VERTEX_UV_SCALE, 1 - float32(v)/VERTEX_UV_SCALE}
}

func (d *decoder) readVertex(format VertexFormat) Vertex {
	var v Vertex
	v.Position = d.c.ReadVec3()
	copy(v.BoneWeight[:], d.c.ReadU8s(4))
	copy(v.BoneIndex[:], d.c.ReadU8s(4))
	copy(v.Normal[:], d.c.ReadU8s(4))

	v.UV = make([][2]float32, format.UVCount)
	for i := range v.UV {
		uv := d.c.ReadI16s(2)
		v.UV[i] = decodeUV(uv[0], uv[1])
	}

	if format.Extra {
		d.c.Skip(4)
	}
	copy(v.Tangent[:], d.c.ReadU8s(4))
	return v
}

// readVertices decodes the raw vertex buffer ref points to.
// The buffer is typed by the model flags, not by its chunk tag.
func (d *decoder) readVertices(ref Reference, flags uint32) ([]Vertex, VertexFormat, error) {
	format, err := vertexFormatFromFlags(flags)
	if err != nil {
		return nil, format, err
	}

	e, ok, err := d.entry(ref)
	if err != nil || !ok {
		return nil, format, err
	}
	if e.Tag != TagU8 {
		return nil, format, newError(FormatError, int64(e.Offset), "vertex buffer chunk is %s, expected %s", e.Tag, TagU8)
	}

	if e.Count%format.Stride != 0 {
		return nil, format, newError(FormatError, int64(e.Offset),
			"vertex buffer size 0x%x is not a multiple of stride %d", e.Count, format.Stride)
	}
	if err := d.fits(e, 1); err != nil {
		return nil, format, err
	}

	vertices := make([]Vertex, e.Count/format.Stride)
	err = d.c.At(int64(e.Offset), func() error {
		for i := range vertices {
			vertices[i] = d.readVertex(format)
		}
		return d.check()
	})
	if err != nil {
		return nil, format, withContext(asError(err, int64(e.Offset)), "reading %d vertices", len(vertices))
	}
	return vertices, format, nil
}
