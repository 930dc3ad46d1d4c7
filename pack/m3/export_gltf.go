package m3

import (
	"fmt"
	"path"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/m3_browser/utils/gltfutils"
)

func (m *Material) exportGLTF(gltfCacher *gltfutils.Cacher) uint32 {
	doc := gltfCacher.Doc

	gltfMaterial := &gltf.Material{
		Name:        m.Name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
		},
	}

	if color := m.ColorTexture(); color != "" {
		texture := gltfCacher.GetCachedOr("texture:"+color, func() interface{} {
			imageIndex := uint32(len(doc.Images))
			doc.Images = append(doc.Images, &gltf.Image{
				Name: path.Base(color),
				URI:  TexturePath(color),
			})
			samplerIndex := uint32(len(doc.Samplers))
			doc.Samplers = append(doc.Samplers, &gltf.Sampler{
				WrapS: gltf.WrapRepeat,
				WrapT: gltf.WrapRepeat,
			})
			textureIndex := uint32(len(doc.Textures))
			doc.Textures = append(doc.Textures, &gltf.Texture{
				Name:    color,
				Sampler: gltf.Index(samplerIndex),
				Source:  gltf.Index(imageIndex),
			})
			return textureIndex
		}).(uint32)

		gltfMaterial.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
			Index: texture,
		}
	}

	doc.Materials = append(doc.Materials, gltfMaterial)
	return uint32(len(doc.Materials) - 1)
}

// ExportGLTF adds one mesh and node per submesh to the document of gltfCacher.
// Face corners are unrolled because UVs are stored per corner.
func (f *File) ExportGLTF(gltfCacher *gltfutils.Cacher) error {
	doc := gltfCacher.Doc

	for iSubmesh := range f.Submeshes {
		s := &f.Submeshes[iSubmesh]
		cornerCount := len(s.Faces) * 3

		positions := make([][3]float32, 0, cornerCount)
		normals := make([][3]float32, 0, cornerCount)
		uvs := make([][2]float32, 0, cornerCount)
		indices := make([]uint32, 0, cornerCount)
		for iFace, face := range s.Faces {
			for k, index := range face {
				positions = append(positions, s.Positions[index])
				normals = append(normals, s.Normals[index])
				uvs = append(uvs, s.UVs[iFace][k])
				indices = append(indices, uint32(len(indices)))
			}
		}

		attributes := map[string]uint32{}
		if cornerCount != 0 {
			attributes["POSITION"] = modeler.WritePosition(doc, positions)
			attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
			attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
		}

		primitive := &gltf.Primitive{
			Attributes: attributes,
		}
		if cornerCount != 0 {
			primitive.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
		}
		if s.Material != nil {
			key := fmt.Sprintf("material:%p", s.Material)
			materialIndex := gltfCacher.GetCachedOr(key, func() interface{} {
				return s.Material.exportGLTF(gltfCacher)
			}).(uint32)
			primitive.Material = gltf.Index(materialIndex)
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       s.Name,
			Primitives: []*gltf.Primitive{primitive},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: s.Name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
	}

	return nil
}

func (f *File) ExportGLTFDefault() (*gltf.Document, error) {
	gltfCacher := gltfutils.NewCacher()
	if err := f.ExportGLTF(gltfCacher); err != nil {
		return nil, err
	}
	return gltfCacher.Doc, nil
}
