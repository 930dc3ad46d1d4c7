package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mogaika/m3_browser/pack/m3"
)

func testSummary() *m3.Summary {
	return &m3.Summary{
		Name:         "marine.m3",
		Header:       &m3.Header{Id: m3.NewTag("MD34"), ReferenceTableOffset: 0x1a0, ReferenceTableCount: 14, ModelCount: 1, ModelIndex: 13},
		Flags:        m3.VERTEX_FLAG_32,
		VertexFormat: m3.VertexFormat{Flag: m3.VERTEX_FLAG_32, Stride: 32, UVCount: 1},
		Vertices:     4,
		Regions:      1,
		Batches:      1,
		Indices:      6,
		Submeshes: []m3.SubmeshSummary{
			{Name: "marine_0", Vertices: 4, Faces: 2, Material: "mat_body"},
		},
		Materials: []m3.MaterialSummary{{
			Name: "mat_body",
			Layers: map[string]string{
				"specularity": "Assets/Textures/marine_specular.dds",
				"color":       "Assets/Textures/marine_diffuse.dds",
				"normal":      "Assets/Textures/marine_normal.dds",
			},
		}},
		Diagnostics: []string{"unsupported reference format XXXX (count 1, offset 0x40)"},
	}
}

func TestPrintInfo(t *testing.T) {
	var out bytes.Buffer
	if err := printInfo(&out, testSummary()); err != nil {
		t.Fatal(err)
	}
	text := out.String()

	for _, want := range []string{
		"file:       marine.m3",
		"references: 14 at 0x1a0",
		"flags:      0x20000 (stride 32, 1 uv sets)",
		"marine_0",
		"material mat_body",
		"diagnostics:",
		"unsupported reference format XXXX",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}

	color := strings.Index(text, "marine_diffuse")
	normal := strings.Index(text, "marine_normal")
	specular := strings.Index(text, "marine_specular")
	if !(color < normal && normal < specular) {
		t.Errorf("layers out of order:\n%s", text)
	}

	for i := 0; i < 10; i++ {
		var again bytes.Buffer
		if err := printInfo(&again, testSummary()); err != nil {
			t.Fatal(err)
		}
		if again.String() != text {
			t.Fatalf("output differs between runs:\n%s\n%s", text, again.String())
		}
	}
}

func TestInfoCommandErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "rock.m3")
	if err := os.WriteFile(bad, []byte("XXXX this is not a model file"), 0666); err != nil {
		t.Fatal(err)
	}

	err := infoCmd().Run(context.Background(), []string{"info", bad})
	if !m3.IsKind(err, m3.FormatError) {
		t.Errorf("bad model: error %v; expected format error", err)
	}

	if err := infoCmd().Run(context.Background(), []string{"info"}); err == nil {
		t.Error("missing path accepted")
	}

	if err := infoCmd().Run(context.Background(), []string{"info", filepath.Join(dir, "missing.m3")}); err == nil {
		t.Error("missing file accepted")
	}
}
