package m3

import (
	"archive/zip"
	"bytes"
	"log"
	"net/http"

	"github.com/pkg/errors"

	"github.com/mogaika/m3_browser/utils"
	"github.com/mogaika/m3_browser/utils/gltfutils"
	"github.com/mogaika/m3_browser/webutils"
)

// ExportZip writes the obj, its material library and the texture list into one archive.
func (f *File) ExportZip(w *zip.Writer) error {
	name := baseName(f.Name)
	if name == "" {
		name = "model"
	}

	var objBuf, mtlBuf bytes.Buffer
	if err := f.ExportObj(&objBuf, &mtlBuf, name+".mtl"); err != nil {
		return errors.Wrapf(err, "Failed to export obj")
	}

	files := []struct {
		name string
		data []byte
	}{
		{name + ".obj", objBuf.Bytes()},
		{name + ".mtl", mtlBuf.Bytes()},
	}
	for _, file := range files {
		zf, err := w.Create(file.name)
		if err != nil {
			return errors.Wrapf(err, "Can't create zip entry %q", file.name)
		}
		if _, err := zf.Write(file.data); err != nil {
			return errors.Wrapf(err, "Can't write zip entry %q", file.name)
		}
	}
	return nil
}

func (f *File) HttpAction(w http.ResponseWriter, r *http.Request, action string) error {
	name := baseName(f.Name)

	switch action {
	case "obj":
		var buf bytes.Buffer
		if err := f.ExportObj(&buf, nil, ""); err != nil {
			return errors.Wrapf(err, "Error when exporting model as obj")
		}
		webutils.WriteFile(w, &buf, name+".obj")
	case "zip":
		var buf bytes.Buffer
		z := zip.NewWriter(&buf)
		if err := f.ExportZip(z); err != nil {
			return err
		}
		if err := z.Close(); err != nil {
			return errors.Wrapf(err, "Failed to close zip")
		}
		webutils.WriteFile(w, &buf, name+".zip")
	case "gltf":
		doc, err := f.ExportGLTFDefault()
		if err != nil {
			return errors.Wrapf(err, "Error when exporting model as gltf")
		}
		var buf bytes.Buffer
		if err := gltfutils.ExportBinary(&buf, doc); err != nil {
			return errors.Wrapf(err, "Failed to encode gltf")
		}
		webutils.WriteFile(w, &buf, name+".glb")
	case "fbx":
		var buf bytes.Buffer
		if err := f.ExportFbxDefault().WriteZip(&buf, name+".fbx"); err != nil {
			return errors.Wrapf(err, "Error when exporting model as fbx")
		}
		webutils.WriteFile(w, &buf, name+".fbx.zip")
	case "dump":
		webutils.WriteFile(w, bytes.NewReader([]byte(utils.SDump(f))), name+".dump.txt")
	case "yaml":
		webutils.WriteYamlFile(w, f, name)
	default:
		return errors.Errorf("Unknown action %q", action)
	}

	log.Printf("[m3] action %q on '%s' done", action, f.Name)
	return nil
}
