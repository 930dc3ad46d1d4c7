package m3

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/m3_browser/utils"
)

// Submesh is one renderable part: a vertex slice, its faces and one material.
// Faces index into Positions. UVs holds UV set 0 for every face corner.
type Submesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Faces     [][3]uint16
	UVs       [][3][2]float32
	Material  *Material

	BatchIndex  int
	RegionIndex int
}

func SubmeshName(base string, i int) string {
	if base == "" {
		base = "NONAME"
	}
	return fmt.Sprintf("%s_%d", base, i)
}

// AssembleSubmeshes builds one submesh per batch of the model division, in batch order.
// Regions not referenced by any batch are ignored.
func AssembleSubmeshes(name string, m *Model) ([]Submesh, error) {
	div := &m.Division
	submeshes := make([]Submesh, 0, len(div.Batches))

	for i, b := range div.Batches {
		if int(b.RegionIndex) >= len(div.Regions) {
			return nil, newError(OutOfRangeReference, -1,
				"batch %d region index %d outside %d regions", i, b.RegionIndex, len(div.Regions))
		}
		if int(b.MaterialIndex) >= len(m.MaterialLookup) {
			return nil, newError(OutOfRangeReference, -1,
				"batch %d material lookup index %d outside %d lookups", i, b.MaterialIndex, len(m.MaterialLookup))
		}
		lookup := m.MaterialLookup[b.MaterialIndex]
		if int(lookup.MaterialIndex) >= len(m.Materials) {
			return nil, newError(OutOfRangeReference, -1,
				"batch %d material lookup %d points to material %d outside %d materials",
				i, b.MaterialIndex, lookup.MaterialIndex, len(m.Materials))
		}

		region := div.Regions[b.RegionIndex]
		vertEnd := uint64(region.OffsetVert) + uint64(region.NumVert)
		if vertEnd > uint64(len(m.Vertices)) {
			return nil, newError(OutOfRangeReference, -1,
				"batch %d region %d vertices [%d:%d] outside %d vertices",
				i, b.RegionIndex, region.OffsetVert, vertEnd, len(m.Vertices))
		}
		faceEnd := uint64(region.OffsetFaces) + uint64(region.NumFaces)
		if faceEnd > uint64(len(div.Indices)) {
			return nil, newError(OutOfRangeReference, -1,
				"batch %d region %d faces [%d:%d] outside %d indices",
				i, b.RegionIndex, region.OffsetFaces, faceEnd, len(div.Indices))
		}
		if region.NumFaces%3 != 0 {
			return nil, newError(FormatError, -1,
				"batch %d region %d face index count %d is not a multiple of 3", i, b.RegionIndex, region.NumFaces)
		}

		vertices := m.Vertices[region.OffsetVert:vertEnd]
		indices := div.Indices[region.OffsetFaces:faceEnd]

		s := Submesh{
			Name:        SubmeshName(name, i),
			Positions:   make([]mgl32.Vec3, len(vertices)),
			Normals:     make([]mgl32.Vec3, len(vertices)),
			Faces:       make([][3]uint16, len(indices)/3),
			UVs:         make([][3][2]float32, len(indices)/3),
			Material:    &m.Materials[lookup.MaterialIndex],
			BatchIndex:  i,
			RegionIndex: int(b.RegionIndex),
		}
		for j, v := range vertices {
			s.Positions[j] = v.Position
			s.Normals[j] = utils.UnpackNormal(v.Normal)
		}
		for j := range s.Faces {
			for k := 0; k < 3; k++ {
				idx := indices[j*3+k]
				if int(idx) >= len(vertices) {
					return nil, newError(OutOfRangeReference, -1,
						"batch %d face %d index %d outside %d region vertices", i, j, idx, len(vertices))
				}
				s.Faces[j][k] = idx
				s.UVs[j][k] = vertexUV(vertices[idx], 0)
			}
		}

		submeshes = append(submeshes, s)
	}

	return submeshes, nil
}

func vertexUV(v Vertex, set int) [2]float32 {
	if set < len(v.UV) {
		return v.UV[set]
	}
	return [2]float32{}
}
