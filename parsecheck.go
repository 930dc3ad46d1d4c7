package main

import (
	"log"

	"github.com/mogaika/m3_browser/pack"
	"github.com/mogaika/m3_browser/pack/m3"
	"github.com/mogaika/m3_browser/vfs"
)

// parseCheck parses every model under rootfs and returns the number of failures.
func parseCheck(rootfs vfs.Directory) int {
	files, err := vfs.FindFiles(rootfs, ".m3")
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, fname := range files {
		data, err := pack.GetInstanceHandler(rootfs, fname)
		if err != nil {
			log.Printf("[parsecheck] E %s: %v", fname, err)
			failed++
			continue
		}
		f := data.(*m3.File)
		for _, d := range f.Diagnostics {
			log.Printf("[parsecheck] W %s: %s", fname, d)
		}
		log.Printf("[parsecheck] %s: %d vertices, %d submeshes", fname, len(f.Model.Vertices), len(f.Submeshes))
	}

	log.Printf("[parsecheck] %d models, %d failed", len(files), failed)
	return failed
}
