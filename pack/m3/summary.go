package m3

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/mogaika/m3_browser/utils"
)

type SubmeshSummary struct {
	Name        string
	Vertices    int
	Faces       int
	Material    string
	BatchIndex  int
	RegionIndex int
	BoundsMin   mgl32.Vec3
	BoundsMax   mgl32.Vec3
}

type MaterialSummary struct {
	Name      string
	BlendMode uint32
	Flags     uint32
	Layers    map[string]string `json:",omitempty" yaml:",omitempty"`
}

type Summary struct {
	Name         string
	Session      uuid.UUID
	Header       *Header
	Table        *ReferenceTable
	Flags        uint32
	VertexFormat VertexFormat
	Vertices     int
	Regions      int
	Batches      int
	Indices      int
	Bounds       BoundingSphere
	Materials    []MaterialSummary
	Lookup       []MaterialLookup
	Submeshes    []SubmeshSummary
	Diagnostics  []string
}

func (m *Material) Summary() MaterialSummary {
	s := MaterialSummary{Name: m.Name, BlendMode: m.BlendMode, Flags: m.Flags}
	for i, l := range m.Layers {
		if l.Path == "" {
			continue
		}
		if s.Layers == nil {
			s.Layers = make(map[string]string)
		}
		name := LayerNames[i]
		if name == "" {
			name = fmt.Sprintf("layer%d", i)
		}
		s.Layers[name] = l.Path
	}
	return s
}

// Marshal is the view served by the browser.
func (f *File) Marshal() (interface{}, error) {
	s := &Summary{
		Name:         f.Name,
		Session:      f.Session,
		Header:       f.Header,
		Table:        f.Table,
		Flags:        f.Model.Flags,
		VertexFormat: f.Model.VertexFormat,
		Vertices:     len(f.Model.Vertices),
		Regions:      len(f.Model.Division.Regions),
		Batches:      len(f.Model.Division.Batches),
		Indices:      len(f.Model.Division.Indices),
		Bounds:       f.Model.Bounds,
		Lookup:       f.Model.MaterialLookup,
		Diagnostics:  f.Diagnostics,
	}
	for i := range f.Model.Materials {
		s.Materials = append(s.Materials, f.Model.Materials[i].Summary())
	}
	for _, sm := range f.Submeshes {
		min, max := utils.Bounds(sm.Positions)
		s.Submeshes = append(s.Submeshes, SubmeshSummary{
			Name:        sm.Name,
			Vertices:    len(sm.Positions),
			Faces:       len(sm.Faces),
			Material:    sm.Material.Name,
			BatchIndex:  sm.BatchIndex,
			RegionIndex: sm.RegionIndex,
			BoundsMin:   min,
			BoundsMax:   max,
		})
	}
	return s, nil
}
