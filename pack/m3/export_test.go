package m3

import (
	"archive/zip"
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mogaika/m3_browser/utils/gltfutils"
)

func texturedTestFile(t *testing.T) *File {
	t.Helper()
	m := defaultTestModel()
	m.materials[0].layers = map[int]string{
		LAYER_COLOR:  "Assets\\Textures\\marine_diff.dds",
		LAYER_NORMAL: "Assets\\Textures\\marine_norm.dds",
	}
	return mustParse(t, "marine.m3", m.build())
}

func TestExportObj(t *testing.T) {
	f := texturedTestFile(t)

	var obj, mtl bytes.Buffer
	if err := f.ExportObj(&obj, &mtl, "marine.mtl"); err != nil {
		t.Fatalf("ExportObj failed: %v", err)
	}

	for _, line := range []string{
		"mtllib marine.mtl",
		"o marine_0",
		"v 0.000000 0.000000 0.000000",
		"vt 0.000000 1.000000",
		"usemtl mat_body",
		"f 1/1/1 1/2/1 1/3/1",
	} {
		if !strings.Contains(obj.String(), line+"\n") {
			t.Errorf("obj is missing %q:\n%s", line, obj.String())
		}
	}
	for _, line := range []string{
		"newmtl mat_body",
		"map_Kd Assets/Textures/marine_diff.dds",
		"map_Bump Assets/Textures/marine_norm.dds",
	} {
		if !strings.Contains(mtl.String(), line+"\n") {
			t.Errorf("mtl is missing %q:\n%s", line, mtl.String())
		}
	}
	if strings.Contains(mtl.String(), "map_Ks") {
		t.Errorf("mtl has a specular map without a specularity layer")
	}
}

func TestExportGLTF(t *testing.T) {
	f := texturedTestFile(t)

	doc, err := f.ExportGLTFDefault()
	if err != nil {
		t.Fatalf("ExportGLTFDefault failed: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Nodes) != 1 {
		t.Fatalf("%d meshes, %d nodes; expected 1 and 1", len(doc.Meshes), len(doc.Nodes))
	}
	if len(doc.Materials) != 1 || doc.Materials[0].Name != "mat_body" {
		t.Errorf("materials %v; expected mat_body", doc.Materials)
	}
	if len(doc.Images) != 1 || doc.Images[0].URI != "Assets/Textures/marine_diff.dds" {
		t.Errorf("images %v; expected the color layer", doc.Images)
	}
	p := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{"POSITION", "NORMAL", "TEXCOORD_0"} {
		if _, ok := p.Attributes[attr]; !ok {
			t.Errorf("primitive has no %s", attr)
		}
	}

	var buf bytes.Buffer
	if err := gltfutils.ExportBinary(&buf, doc); err != nil {
		t.Fatalf("ExportBinary failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Errorf("output is not glb")
	}
}

func TestExportGLTFSharedMaterial(t *testing.T) {
	m := defaultTestModel()
	m.batches = append(m.batches, Batch{RegionIndex: 0, MaterialIndex: 0})
	f := mustParse(t, "twice.m3", m.build())

	doc, err := f.ExportGLTFDefault()
	if err != nil {
		t.Fatalf("ExportGLTFDefault failed: %v", err)
	}
	if len(doc.Meshes) != 2 || len(doc.Materials) != 1 {
		t.Errorf("%d meshes, %d materials; expected 2 meshes sharing 1 material", len(doc.Meshes), len(doc.Materials))
	}
}

func TestHttpActionZip(t *testing.T) {
	f := texturedTestFile(t)

	w := httptest.NewRecorder()
	if err := f.HttpAction(w, httptest.NewRequest("GET", "/action/marine.m3/zip", nil), "zip"); err != nil {
		t.Fatalf("zip action failed: %v", err)
	}

	body := w.Body.Bytes()
	z, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}
	names := make(map[string]bool)
	for _, zf := range z.File {
		names[zf.Name] = true
	}
	if !names["marine.obj"] || !names["marine.mtl"] {
		t.Errorf("zip entries %v; expected marine.obj and marine.mtl", names)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "marine.zip") {
		t.Errorf("Content-Disposition %q", cd)
	}
}

func TestHttpActionUnknown(t *testing.T) {
	f := texturedTestFile(t)
	w := httptest.NewRecorder()
	if err := f.HttpAction(w, httptest.NewRequest("GET", "/", nil), "blend"); err == nil {
		t.Errorf("unknown action succeeded")
	}
}

func TestMarshalSummary(t *testing.T) {
	f := texturedTestFile(t)
	v, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := v.(*Summary)
	if s.Vertices != 1 || s.Batches != 1 || len(s.Submeshes) != 1 {
		t.Errorf("summary %+v", s)
	}
	if layers := s.Materials[0].Layers; layers["color"] == "" || layers["normal"] == "" || len(layers) != 2 {
		t.Errorf("material layers %v", layers)
	}
}

func TestTexturePaths(t *testing.T) {
	f := texturedTestFile(t)
	paths := f.TexturePaths()
	if len(paths) != 2 || paths[0] != "Assets\\Textures\\marine_diff.dds" {
		t.Errorf("TexturePaths()=%v", paths)
	}
}
