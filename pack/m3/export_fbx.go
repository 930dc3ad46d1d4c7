package m3

import (
	"fmt"
	"strings"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/m3_browser/utils/fbxbuilder"
)

type FbxExportSubmesh struct {
	FbxGeometryId int64
	FbxGeometry   *fbx.Node
	FbxModelId    int64
	FbxModel      *fbx.Node
	MaterialId    int64
}

type FbxExporter struct {
	Submeshes []*FbxExportSubmesh
}

func (m *Material) exportFbx(f *fbxbuilder.FBXBuilder) int64 {
	materialId := f.GenerateId()

	props := bfbx73.Properties70().AddNodes(
		bfbx73.P("AmbientColor", "Color", "", "A", float64(0), float64(0), float64(0)),
		bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
		bfbx73.P("Emissive", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
		bfbx73.P("Ambient", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
		bfbx73.P("Diffuse", "Vector3D", "Vector", "", float64(1), float64(1), float64(1)),
		bfbx73.P("SpecularFactor", "Number", "", "A", float64(m.SpecularMultiplier)),
		bfbx73.P("EmissiveFactor", "Number", "", "A", float64(m.EmissiveMultiplier)),
		bfbx73.P("Opacity", "double", "Number", "", float64(1)),
	)
	for i, l := range m.Layers {
		if l.Path == "" || LayerNames[i] == "" {
			continue
		}
		props.AddNodes(bfbx73.P("M3|"+LayerNames[i], "KString", "", "", TexturePath(l.Path)))
	}

	f.AddObjects(bfbx73.Material(materialId, m.Name+"\x00\x01Material", "").AddNodes(
		bfbx73.Version(102),
		bfbx73.ShadingModel("phong"),
		bfbx73.MultiLayer(0),
		props,
	))
	return materialId
}

func (s *Submesh) exportFbx(f *fbxbuilder.FBXBuilder) *FbxExportSubmesh {
	fes := &FbxExportSubmesh{}

	vertices := make([]float64, 0, len(s.Positions)*3)
	for _, p := range s.Positions {
		vertices = append(vertices, float64(p[0]), float64(p[1]), float64(p[2]))
	}
	normals := make([]float64, 0, len(s.Normals)*3)
	for _, n := range s.Normals {
		normals = append(normals, float64(n[0]), float64(n[1]), float64(n[2]))
	}

	indexes := make([]int32, 0, len(s.Faces)*3)
	uv := make([]float64, 0, len(s.UVs)*6)
	uvindexes := make([]int32, 0, len(s.Faces)*3)
	for iFace, face := range s.Faces {
		// last index of a polygon is stored as -(i+1)
		indexes = append(indexes, int32(face[0]), int32(face[1]), -int32(face[2])-1)
		for k := 0; k < 3; k++ {
			uvindexes = append(uvindexes, int32(len(uv)/2))
			uv = append(uv, float64(s.UVs[iFace][k][0]), float64(s.UVs[iFace][k][1]))
		}
	}

	fes.FbxGeometryId = f.GenerateId()

	geometryLayer := bfbx73.Layer(0).AddNodes(
		bfbx73.Version(100),
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementNormal"),
			bfbx73.TypedIndex(0),
		),
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementUV"),
			bfbx73.TypedIndex(0),
		),
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementMaterial"),
			bfbx73.TypedIndex(0),
		),
	)

	fes.FbxGeometry = bfbx73.Geometry(fes.FbxGeometryId, "\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(normals),
		),
		bfbx73.LayerElementUV(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name("UVSet0"),
			bfbx73.MappingInformationType("ByPolygonVertex"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.UV(uv),
			bfbx73.UVIndex(uvindexes),
		),
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("AllSame"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials([]int32{0}),
		),
		geometryLayer,
	)

	fes.FbxModelId = f.GenerateId()
	fes.FbxModel = bfbx73.Model(fes.FbxModelId, s.Name+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)

	f.AddObjects(fes.FbxModel, fes.FbxGeometry)
	f.AddConnections(bfbx73.C("OO", fes.FbxGeometryId, fes.FbxModelId))

	if s.Material != nil {
		key := fmt.Sprintf("material:%p", s.Material)
		if cached := f.GetCached(key); cached != nil {
			fes.MaterialId = cached.(int64)
		} else {
			fes.MaterialId = s.Material.exportFbx(f)
			f.AddCache(key, fes.MaterialId)
		}
		f.AddConnections(bfbx73.C("OO", fes.MaterialId, fes.FbxModelId))
	}

	return fes
}

func (file *File) ExportFbx(f *fbxbuilder.FBXBuilder) *FbxExporter {
	fe := &FbxExporter{}
	for i := range file.Submeshes {
		fe.Submeshes = append(fe.Submeshes, file.Submeshes[i].exportFbx(f))
	}
	return fe
}

// ExportFbxDefault builds a scene with every submesh attached to the root node.
// The texture list goes alongside as a text file for WriteZip.
func (file *File) ExportFbxDefault() *fbxbuilder.FBXBuilder {
	f := fbxbuilder.NewFBXBuilder(file.Name)
	fe := file.ExportFbx(f)
	for _, s := range fe.Submeshes {
		f.AddConnections(bfbx73.C("OO", s.FbxModelId, 0))
	}

	if textures := file.TexturePaths(); len(textures) != 0 {
		f.AddExportFile(baseName(file.Name)+".textures.txt", []byte(strings.Join(textures, "\n")+"\n"))
	}
	return f
}

// TexturePaths lists the distinct layer paths used by the model materials, in material order.
func (file *File) TexturePaths() []string {
	seen := make(map[string]bool)
	result := make([]string, 0)
	for i := range file.Model.Materials {
		for _, l := range file.Model.Materials[i].Layers {
			if l.Path != "" && !seen[l.Path] {
				seen[l.Path] = true
				result = append(result, l.Path)
			}
		}
	}
	return result
}
