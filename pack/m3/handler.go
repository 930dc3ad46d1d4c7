package m3

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mogaika/m3_browser/config"
	"github.com/mogaika/m3_browser/pack"
	"github.com/mogaika/m3_browser/status"
	"github.com/mogaika/m3_browser/utils"
)

func assetLogger(name string) (*utils.Logger, func()) {
	logDir := config.Get().LogDir
	if logDir == "" {
		return nil, func() {}
	}
	fpath := filepath.Join(logDir, filepath.ToSlash(name)+".log")
	if err := os.MkdirAll(filepath.Dir(fpath), 0777); err != nil {
		log.Printf("[m3] Cannot create log dir for '%s': %v", name, err)
		return nil, func() {}
	}
	f, err := os.Create(fpath)
	if err != nil {
		log.Printf("[m3] Cannot create log for '%s': %v", name, err)
		return nil, func() {}
	}
	return &utils.Logger{Writer: f}, func() { f.Close() }
}

func load(src utils.ResourceSource, r io.ReaderAt) (*File, error) {
	logger, closeLog := assetLogger(src.Name())
	defer closeLog()

	status.Info("Parsing %s", src.Name())
	f, err := Parse(src.Name(), r, src.Size(), WithLogger(logger))
	if err != nil {
		logger.Printf("[m3] %v", err)
		status.Error("Failed to parse %s: %v", src.Name(), err)
		return nil, err
	}
	if len(f.Diagnostics) != 0 {
		status.Warning("Parsed %s: %d submeshes, %d diagnostics", src.Name(), len(f.Submeshes), len(f.Diagnostics))
	} else {
		status.Info("Parsed %s: %d submeshes", src.Name(), len(f.Submeshes))
	}
	return f, nil
}

func init() {
	pack.SetHandler(".M3", func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		return load(src, r)
	})
}

// TexturePath maps a layer path stored in the model onto config.TextureDir.
func TexturePath(layerPath string) string {
	if layerPath == "" {
		return ""
	}
	p := strings.ReplaceAll(layerPath, "\\", "/")
	if dir := config.Get().TextureDir; dir != "" {
		return filepath.ToSlash(filepath.Join(dir, p))
	}
	return p
}
