package m3

import (
	"github.com/mogaika/m3_browser/utils"
)

const (
	LAYERS_COUNT = 13

	LAYER_COLOR       = 0
	LAYER_SPECULARITY = 2
	LAYER_NORMAL      = 9

	MATERIAL_SIZE        = 0x10c
	MATERIAL_LOOKUP_SIZE = 0x8
	LAYER_SIZE           = 0x10
	REGION_SIZE          = 0x24
	BATCH_SIZE           = 0xe
	DIVISION_SIZE        = 0x30
)

var LayerNames = [LAYERS_COUNT]string{
	LAYER_COLOR:       "color",
	LAYER_SPECULARITY: "specularity",
	LAYER_NORMAL:      "normal",
}

// Material lookup kinds. Only standard materials are supported.
const (
	MATERIAL_TYPE_STANDARD     = 1
	MATERIAL_TYPE_DISPLACEMENT = 2
	MATERIAL_TYPE_COMPOSITE    = 3
	MATERIAL_TYPE_TERRAIN      = 4
	MATERIAL_TYPE_VOLUME       = 5
)

type Layer struct {
	Path string
}

type Material struct {
	Name               string
	D1                 uint32
	Flags              uint32
	BlendMode          uint32
	Priority           uint32
	D2                 uint32
	Specularity        float32
	F1                 float32
	CutoutThreshold    uint32
	SpecularMultiplier float32
	EmissiveMultiplier float32
	Layers             [LAYERS_COUNT]Layer
	D3                 uint32
	LayerBlend         uint32
	EmissiveBlend      uint32
	D4                 uint32
	SpecularType       uint32
}

func (m *Material) LayerPath(i int) string {
	if i < 0 || i >= LAYERS_COUNT {
		return ""
	}
	return m.Layers[i].Path
}

func (m *Material) ColorTexture() string       { return m.LayerPath(LAYER_COLOR) }
func (m *Material) SpecularityTexture() string { return m.LayerPath(LAYER_SPECULARITY) }
func (m *Material) NormalTexture() string      { return m.LayerPath(LAYER_NORMAL) }

type MaterialLookup struct {
	MaterialType  uint32
	MaterialIndex uint32
}

type Region struct {
	D1          uint32
	D2          uint32
	OffsetVert  uint32
	NumVert     uint32
	OffsetFaces uint32
	NumFaces    uint32
	BoneCount   uint16
	IndBone     uint16
	NumBone     uint16
	S1          [3]uint16
}

type Batch struct {
	RegionIndex   uint16
	MaterialIndex uint16
}

type Division struct {
	Indices []uint16
	Regions []Region
	Batches []Batch
	Msec    Passthrough
}

type chunkDecoder func(d *decoder, e ReferenceEntry) (interface{}, error)

var chunkDecoders map[Tag]chunkDecoder

func init() {
	chunkDecoders = map[Tag]chunkDecoder{
		TagCHAR: decodeString,
		TagLAYR: decodeLayer,
		TagMAT:  decodeMaterials,
		TagMATM: decodeMaterialLookups,
		TagREGN: decodeRegions,
		TagBAT:  decodeBatches,
		TagDIV:  decodeDivisions,
		TagU16:  decodeIndices,
		TagMSEC: decodeMsec,
	}
}

// fits rejects element counts that cannot be stored in the rest of the file.
func (d *decoder) fits(e ReferenceEntry, elementSize int64) error {
	end := int64(e.Offset) + int64(e.Count)*elementSize
	if end > d.c.Size() {
		return newError(Truncation, int64(e.Offset), "%d x %s (0x%x bytes each) ends at 0x%x past file size 0x%x",
			e.Count, e.Tag, elementSize, end, d.c.Size())
	}
	return nil
}

func decodeString(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, 1); err != nil {
		return nil, err
	}
	return utils.BytesToString(d.c.ReadBytes(int(e.Count))), nil
}

func decodeLayer(d *decoder, e ReferenceEntry) (interface{}, error) {
	if e.Count != 1 {
		return nil, newError(FormatError, int64(e.Offset), "unsupported LAYR count %d", e.Count)
	}
	if err := d.fits(e, LAYER_SIZE); err != nil {
		return nil, err
	}
	d.c.Skip(4)
	path, err := resolveAs[string](d, TagCHAR)
	if err != nil {
		return nil, withContext(err, "layer path")
	}
	return Layer{Path: path}, nil
}

func decodeMaterial(d *decoder) (Material, error) {
	var m Material
	var err error

	if m.Name, err = resolveAs[string](d, TagCHAR); err != nil {
		return m, withContext(err, "material name")
	}
	m.D1 = d.c.ReadU32()
	m.Flags = d.c.ReadU32()
	m.BlendMode = d.c.ReadU32()
	m.Priority = d.c.ReadU32()
	m.D2 = d.c.ReadU32()
	m.Specularity = d.c.ReadF32()
	m.F1 = d.c.ReadF32()
	m.CutoutThreshold = d.c.ReadU32()
	m.SpecularMultiplier = d.c.ReadF32()
	m.EmissiveMultiplier = d.c.ReadF32()
	if err := d.check(); err != nil {
		return m, err
	}

	for i := range m.Layers {
		if m.Layers[i], err = resolveAs[Layer](d, TagLAYR); err != nil {
			return m, withContext(err, "material %q layer %d", m.Name, i)
		}
	}

	m.D3 = d.c.ReadU32()
	m.LayerBlend = d.c.ReadU32()
	m.EmissiveBlend = d.c.ReadU32()
	m.D4 = d.c.ReadU32()
	m.SpecularType = d.c.ReadU32()
	d.c.Skip(2 * 0x14)

	return m, d.check()
}

func decodeMaterials(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, MATERIAL_SIZE); err != nil {
		return nil, err
	}
	mats := make([]Material, e.Count)
	for i := range mats {
		var err error
		if mats[i], err = decodeMaterial(d); err != nil {
			return nil, withContext(err, "material %d", i)
		}
	}
	return mats, nil
}

func decodeMaterialLookups(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, MATERIAL_LOOKUP_SIZE); err != nil {
		return nil, err
	}
	lookups := make([]MaterialLookup, e.Count)
	for i := range lookups {
		lookups[i] = MaterialLookup{
			MaterialType:  d.c.ReadU32(),
			MaterialIndex: d.c.ReadU32(),
		}
		if lookups[i].MaterialType != MATERIAL_TYPE_STANDARD {
			d.warnf("unsupported material type %d in lookup %d", lookups[i].MaterialType, i)
		}
	}
	return lookups, nil
}

func decodeRegions(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, REGION_SIZE); err != nil {
		return nil, err
	}
	regions := make([]Region, e.Count)
	for i := range regions {
		r := &regions[i]
		r.D1 = d.c.ReadU32()
		r.D2 = d.c.ReadU32()
		r.OffsetVert = d.c.ReadU32()
		r.NumVert = d.c.ReadU32()
		r.OffsetFaces = d.c.ReadU32()
		r.NumFaces = d.c.ReadU32()
		r.BoneCount = d.c.ReadU16()
		r.IndBone = d.c.ReadU16()
		r.NumBone = d.c.ReadU16()
		copy(r.S1[:], d.c.ReadU16s(3))
	}
	return regions, nil
}

func decodeBatches(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, BATCH_SIZE); err != nil {
		return nil, err
	}
	batches := make([]Batch, e.Count)
	for i := range batches {
		d.c.Skip(4)
		batches[i].RegionIndex = d.c.ReadU16()
		d.c.Skip(4)
		batches[i].MaterialIndex = d.c.ReadU16()
		d.c.Skip(2)
	}
	return batches, nil
}

func decodeDivisions(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, DIVISION_SIZE); err != nil {
		return nil, err
	}
	divs := make([]Division, e.Count)
	for i := range divs {
		div := &divs[i]
		var err error
		if div.Indices, err = resolveAs[[]uint16](d, TagU16); err != nil {
			return nil, withContext(err, "division %d indices", i)
		}
		if div.Regions, err = resolveAs[[]Region](d, TagREGN); err != nil {
			return nil, withContext(err, "division %d regions", i)
		}
		if div.Batches, err = resolveAs[[]Batch](d, TagBAT); err != nil {
			return nil, withContext(err, "division %d batches", i)
		}
		if div.Msec, err = d.resolvePassthrough(); err != nil {
			return nil, withContext(err, "division %d msec", i)
		}
	}
	return divs, nil
}

func decodeIndices(d *decoder, e ReferenceEntry) (interface{}, error) {
	if err := d.fits(e, 2); err != nil {
		return nil, err
	}
	return d.c.ReadU16s(int(e.Count)), nil
}

// MSEC chunks are known but not needed for geometry.
func decodeMsec(d *decoder, e ReferenceEntry) (interface{}, error) {
	return Unresolved{Entry: e}, nil
}
