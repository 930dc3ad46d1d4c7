package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/mogaika/m3_browser/pack/m3"
	"github.com/mogaika/m3_browser/utils"
	"github.com/mogaika/m3_browser/utils/gltfutils"
)

func openModel(cmd *cli.Command, verbose bool) (*m3.File, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, errors.New("missing model path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var opts []m3.Option
	if verbose {
		opts = append(opts, m3.WithLogger(&utils.Logger{Writer: os.Stderr}))
	}
	return m3.Parse(filepath.Base(path), f, stat.Size(), opts...)
}

func infoCmd() *cli.Command {
	var asJson, verbose bool

	return &cli.Command{
		Name:      "info",
		Usage:     "Print header, submeshes and materials of a model",
		ArgsUsage: "<file.m3>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the summary as json", Destination: &asJson},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log parse details to stderr", Destination: &verbose},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := openModel(cmd, verbose)
			if err != nil {
				return err
			}
			summary, err := f.Marshal()
			if err != nil {
				return err
			}
			if asJson {
				data, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, string(data))
				return err
			}
			return printInfo(os.Stdout, summary.(*m3.Summary))
		},
	}
}

func printInfo(w io.Writer, s *m3.Summary) error {
	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	p("file:       %s", s.Name)
	p("references: %d at 0x%x", s.Header.ReferenceTableCount, s.Header.ReferenceTableOffset)
	p("flags:      0x%x (stride %d, %d uv sets)", s.Flags, s.VertexFormat.Stride, s.VertexFormat.UVCount)
	p("vertices:   %d", s.Vertices)
	p("division:   %d indices, %d regions, %d batches", s.Indices, s.Regions, s.Batches)
	p("bounds:     %v %v r=%v", s.Bounds.Min, s.Bounds.Max, s.Bounds.Radius)
	p("submeshes:")
	for _, sm := range s.Submeshes {
		p("  %-24s %6d vertices %6d faces  region %d  material %s", sm.Name, sm.Vertices, sm.Faces, sm.RegionIndex, sm.Material)
	}
	p("materials:")
	for _, m := range s.Materials {
		p("  %s", m.Name)
		layers := make([]string, 0, len(m.Layers))
		for layer := range m.Layers {
			layers = append(layers, layer)
		}
		sort.Strings(layers)
		for _, layer := range layers {
			p("    %-12s %s", layer, m.Layers[layer])
		}
	}
	if len(s.Diagnostics) != 0 {
		p("diagnostics:")
		for _, d := range s.Diagnostics {
			p("  %s", d)
		}
	}
	return err
}

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Dump the decoded model graph",
		ArgsUsage: "<file.m3>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := openModel(cmd, false)
			if err != nil {
				return err
			}
			_, err = io.WriteString(os.Stdout, utils.SDump(f))
			return err
		},
	}
}

func exportCmd() *cli.Command {
	var format, output string

	return &cli.Command{
		Name:      "export",
		Usage:     "Convert a model to obj, gltf or fbx",
		ArgsUsage: "<file.m3>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "obj", Usage: "obj, gltf or fbx", Destination: &format},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file, derived from the model name by default", Destination: &output},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := openModel(cmd, false)
			if err != nil {
				return err
			}

			ext := map[string]string{"obj": ".obj", "gltf": ".glb", "fbx": ".fbx"}[format]
			if ext == "" {
				return errors.Errorf("unknown format %q", format)
			}
			if output == "" {
				output = strings.TrimSuffix(cmd.Args().First(), filepath.Ext(cmd.Args().First())) + ext
			}

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			defer out.Close()

			switch format {
			case "obj":
				mtlPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".mtl"
				mtl, cerr := os.Create(mtlPath)
				if cerr != nil {
					return cerr
				}
				defer mtl.Close()
				err = f.ExportObj(out, mtl, filepath.Base(mtlPath))
			case "gltf":
				doc, gerr := f.ExportGLTFDefault()
				if gerr != nil {
					return errors.Wrapf(gerr, "export %s", format)
				}
				err = gltfutils.ExportBinary(out, doc)
			case "fbx":
				err = f.ExportFbxDefault().Write(out)
			}
			if err != nil {
				return errors.Wrapf(err, "export %s", format)
			}

			fmt.Fprintf(os.Stdout, "%s: %d submeshes written to %s\n", f.Name, len(f.Submeshes), output)
			return nil
		},
	}
}
