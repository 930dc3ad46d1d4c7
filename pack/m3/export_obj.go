package m3

import (
	"fmt"
	"io"
	"path"
)

// ExportObj writes all submeshes into w. Materials go to wMtl when it is not nil,
// and w references them as mtlName.
func (f *File) ExportObj(_w io.Writer, wMtl io.Writer, mtlName string) error {
	var err error
	w := func(out io.Writer, format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(out, format+"\n", args...)
		}
	}

	w(_w, "# %s", f.Name)
	if wMtl != nil {
		w(_w, "mtllib %s", mtlName)
	}

	iV := 1
	iT := 1
	iN := 1

	for _, s := range f.Submeshes {
		w(_w, "o %s", s.Name)
		for _, p := range s.Positions {
			w(_w, "v %f %f %f", p[0], p[1], p[2])
		}
		for _, n := range s.Normals {
			w(_w, "vn %f %f %f", n[0], n[1], n[2])
		}
		for _, face := range s.UVs {
			for _, uv := range face {
				w(_w, "vt %f %f", uv[0], uv[1])
			}
		}

		if wMtl != nil && s.Material != nil {
			w(_w, "usemtl %s", objMaterialName(s.Material))
		}
		for iFace, face := range s.Faces {
			t := iT + iFace*3
			w(_w, "f %v/%v/%v %v/%v/%v %v/%v/%v",
				iV+int(face[0]), t, iN+int(face[0]),
				iV+int(face[1]), t+1, iN+int(face[1]),
				iV+int(face[2]), t+2, iN+int(face[2]))
		}

		iV += len(s.Positions)
		iN += len(s.Normals)
		iT += len(s.UVs) * 3
	}

	if wMtl != nil {
		for i := range f.Model.Materials {
			mat := &f.Model.Materials[i]
			w(wMtl, "newmtl %s", objMaterialName(mat))
			w(wMtl, "Kd 1 1 1")
			w(wMtl, "Ns %f", mat.Specularity)
			if p := mat.ColorTexture(); p != "" {
				w(wMtl, "map_Kd %s", TexturePath(p))
			}
			if p := mat.SpecularityTexture(); p != "" {
				w(wMtl, "map_Ks %s", TexturePath(p))
			}
			if p := mat.NormalTexture(); p != "" {
				w(wMtl, "map_Bump %s", TexturePath(p))
			}
			w(wMtl, "")
		}
	}

	return err
}

func objMaterialName(m *Material) string {
	if m.Name == "" {
		return "unnamed"
	}
	return path.Base(m.Name)
}
