package m3

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

// le accumulates little-endian test payloads.
type le struct {
	bytes.Buffer
}

func (b *le) u16(vs ...uint16) *le {
	for _, v := range vs {
		binary.Write(&b.Buffer, binary.LittleEndian, v)
	}
	return b
}

func (b *le) i16(vs ...int16) *le {
	for _, v := range vs {
		binary.Write(&b.Buffer, binary.LittleEndian, v)
	}
	return b
}

func (b *le) u32(vs ...uint32) *le {
	for _, v := range vs {
		binary.Write(&b.Buffer, binary.LittleEndian, v)
	}
	return b
}

func (b *le) f32(vs ...float32) *le {
	for _, v := range vs {
		b.u32(math.Float32bits(v))
	}
	return b
}

func (b *le) tag(s string) *le {
	t := []byte(s)
	b.Write([]byte{t[3], t[2], t[1], t[0]})
	return b
}

func (b *le) ref(count, index uint32) *le {
	return b.u32(count, index, 0)
}

func (b *le) zeros(n int) *le {
	b.Write(make([]byte, n))
	return b
}

type testChunk struct {
	tag     string
	count   uint32
	typ     uint32
	payload []byte
}

// fileBuilder lays chunks out after the header and appends the reference table.
// Table entry 0 is the MD34 sentinel.
type fileBuilder struct {
	chunks []testChunk
	magic  string
}

func newFileBuilder() *fileBuilder {
	return &fileBuilder{
		chunks: []testChunk{{tag: "MD34"}},
		magic:  "MD34",
	}
}

func (fb *fileBuilder) add(tag string, count, typ uint32, payload []byte) uint32 {
	fb.chunks = append(fb.chunks, testChunk{tag: tag, count: count, typ: typ, payload: payload})
	return uint32(len(fb.chunks) - 1)
}

// reserve adds a placeholder whose payload is set later with set.
func (fb *fileBuilder) reserve(tag string, count, typ uint32) uint32 {
	return fb.add(tag, count, typ, nil)
}

func (fb *fileBuilder) set(index uint32, payload []byte) {
	fb.chunks[index].payload = payload
}

func (fb *fileBuilder) build(modelIndex uint32) []byte {
	var data le
	data.zeros(HEADER_SIZE)
	offsets := make([]uint32, len(fb.chunks))
	for i, c := range fb.chunks {
		for data.Len()%16 != 0 {
			data.WriteByte(0xaa)
		}
		if i == 0 {
			continue
		}
		offsets[i] = uint32(data.Len())
		data.Write(c.payload)
	}
	for data.Len()%16 != 0 {
		data.WriteByte(0xaa)
	}

	tableOffset := uint32(data.Len())
	for i, c := range fb.chunks {
		data.tag(c.tag).u32(offsets[i], c.count, c.typ)
	}

	out := data.Bytes()
	var h le
	h.tag(fb.magic).u32(tableOffset, uint32(len(fb.chunks)), 1, modelIndex)
	copy(out, h.Bytes())
	return out
}

type testMaterial struct {
	name   string
	layers map[int]string
}

type testVertex struct {
	pos     [3]float32
	normal  [4]uint8
	uv      [][2]int16
	tangent [4]uint8
}

// testModel describes a minimal model; zero values produce the valid single submesh file.
type testModel struct {
	flags     uint32
	modelType uint32
	vertices  []testVertex
	indices   []uint16
	regions   []Region
	batches   []Batch
	lookups   []MaterialLookup
	materials []testMaterial

	divCount    uint32
	regionsTag  string
	bonesTag    string
	noVertexRef bool
	// the reserved division reference points back at the division chunk
	msecSelf bool
}

func defaultTestModel() testModel {
	return testModel{
		flags:     VERTEX_FLAG_32,
		modelType: MODEL_TYPE_MODL23,
		vertices:  []testVertex{{uv: [][2]int16{{0, 0}}}},
		indices:   []uint16{0, 0, 0},
		regions:   []Region{{OffsetVert: 0, NumVert: 1, OffsetFaces: 0, NumFaces: 3}},
		batches:   []Batch{{RegionIndex: 0, MaterialIndex: 0}},
		lookups:   []MaterialLookup{{MaterialType: MATERIAL_TYPE_STANDARD, MaterialIndex: 0}},
		materials: []testMaterial{{name: "mat_body"}},
		divCount:  1,
	}
}

func (fb *fileBuilder) addString(s string) uint32 {
	b := append([]byte(s), 0)
	return fb.add("CHAR", uint32(len(b)), 0, b)
}

func (m testModel) build() []byte {
	fb := newFileBuilder()

	var vertexRef, vertexIndex uint32
	if !m.noVertexRef {
		var vb le
		for _, v := range m.vertices {
			vb.f32(v.pos[0], v.pos[1], v.pos[2])
			vb.zeros(8)
			vb.Write(v.normal[:])
			for _, uv := range v.uv {
				vb.i16(uv[0], uv[1])
			}
			if m.flags&VERTEX_FLAG_EXTRA != 0 {
				vb.Write([]byte{0xff, 0xff, 0xff, 0xff})
			}
			vb.Write(v.tangent[:])
		}
		vertexIndex = fb.add("U8__", uint32(vb.Len()), 0, vb.Bytes())
		vertexRef = uint32(vb.Len())
	}

	var ib le
	ib.u16(m.indices...)
	indicesIndex := fb.add("U16_", uint32(len(m.indices)), 0, ib.Bytes())

	regionsTag := m.regionsTag
	if regionsTag == "" {
		regionsTag = "REGN"
	}
	var rb le
	for _, r := range m.regions {
		rb.u32(r.D1, r.D2, r.OffsetVert, r.NumVert, r.OffsetFaces, r.NumFaces)
		rb.u16(r.BoneCount, r.IndBone, r.NumBone)
		rb.u16(r.S1[:]...)
	}
	regionsIndex := fb.add(regionsTag, uint32(len(m.regions)), 0, rb.Bytes())

	var bb le
	for _, b := range m.batches {
		bb.zeros(4).u16(b.RegionIndex).zeros(4).u16(b.MaterialIndex).zeros(2)
	}
	batchesIndex := fb.add("BAT_", uint32(len(m.batches)), 0, bb.Bytes())

	divIndex := fb.reserve("DIV_", m.divCount, 0)
	var db le
	for i := uint32(0); i < m.divCount; i++ {
		db.ref(uint32(len(m.indices)), indicesIndex)
		db.ref(uint32(len(m.regions)), regionsIndex)
		db.ref(uint32(len(m.batches)), batchesIndex)
		if m.msecSelf {
			db.ref(1, divIndex)
		} else {
			db.ref(0, 0)
		}
	}
	fb.set(divIndex, db.Bytes())

	var bonesIndex uint32
	if m.bonesTag != "" {
		bonesIndex = fb.add(m.bonesTag, 1, 0, make([]byte, 16))
	}

	var lb le
	for _, l := range m.lookups {
		lb.u32(l.MaterialType, l.MaterialIndex)
	}
	lookupIndex := fb.add("MATM", uint32(len(m.lookups)), 0, lb.Bytes())

	var mb le
	for _, mat := range m.materials {
		nameIndex := fb.addString(mat.name)
		mb.ref(uint32(len(mat.name)+1), nameIndex)
		mb.u32(1, 2, 3, 4, 5)
		mb.f32(0.5, 0).u32(7).f32(1.5, 2.5)

		layerSlots := make([]int, 0, len(mat.layers))
		for slot := range mat.layers {
			layerSlots = append(layerSlots, slot)
		}
		sort.Ints(layerSlots)
		layers := [LAYERS_COUNT]uint32{}
		for _, slot := range layerSlots {
			pathIndex := fb.addString(mat.layers[slot])
			var layer le
			layer.zeros(4).ref(uint32(len(mat.layers[slot])+1), pathIndex)
			layers[slot] = fb.add("LAYR", 1, 0, layer.Bytes())
		}
		for _, l := range layers {
			mb.ref(1, l)
		}
		mb.u32(8, 9, 10, 11, 12)
		mb.zeros(0x28)
	}
	materialsIndex := fb.add("MAT_", uint32(len(m.materials)), 0, mb.Bytes())

	modelIndex := fb.reserve("MODL", 1, m.modelType)
	var model le
	model.zeros(MODEL_PREFIX_SIZE)
	model.u32(m.flags)
	model.ref(vertexRef, vertexIndex)
	model.ref(m.divCount, divIndex)
	model.ref(1, bonesIndex)
	model.f32(-1, -1, -1, 1, 1, 1, 1.5).u32(0)
	model.zeros(MODEL_RESERVED_SIZE)
	for i := 0; i < 6; i++ {
		model.ref(0, 0)
	}
	model.ref(uint32(len(m.lookups)), lookupIndex)
	model.ref(uint32(len(m.materials)), materialsIndex)
	for i := 0; i < 4; i++ {
		model.ref(0, 0)
	}
	fb.set(modelIndex, model.Bytes())

	return fb.build(modelIndex)
}
