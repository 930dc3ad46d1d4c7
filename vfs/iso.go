package vfs

import (
	"encoding/binary"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mogaika/udf"
)

const ISO_SECTOR_SIZE = 2048

// IsoDriver lists the root of a UDF disc image, both layers of a dual layer disc.
type IsoDriver struct {
	f                File
	layers           [2]*udf.Udf
	secondLayerStart int64
}

func (iso *IsoDriver) Init(parent Directory) {}
func (iso *IsoDriver) Name() string          { return iso.f.Name() }
func (iso *IsoDriver) IsDirectory() bool     { return true }

func (iso *IsoDriver) List() ([]string, error) {
	result := make([]string, 0, 48)
	for _, layer := range iso.layers {
		if layer != nil {
			for _, f := range layer.ReadDir(nil) {
				result = append(result, f.Name())
			}
		}
	}
	return result, nil
}

func (iso *IsoDriver) GetElement(name string) (Element, error) {
	for _, layer := range iso.layers {
		if layer != nil {
			for _, f := range layer.ReadDir(nil) {
				if strings.EqualFold(f.Name(), name) {
					return &IsoDriverFile{f: f}, nil
				}
			}
		}
	}
	return nil, os.ErrNotExist
}

func (iso *IsoDriver) openStreams() {
	iso.layers[0] = udf.NewUdfFromReader(iso.f)

	var volSizeBuf [4]byte
	// primary volume description sector + offset of volume space size
	if _, err := iso.f.ReadAt(volSizeBuf[:], 0x10*ISO_SECTOR_SIZE+80); err != nil {
		log.Printf("[vfs] [iso] Error when detecting second layer: Read vol size buf error: %v", err)
		return
	}
	// minus 16 boot sectors, because they do not replicated over layers (volumes)
	volumeSize := int64(binary.LittleEndian.Uint32(volSizeBuf[:])-16) * ISO_SECTOR_SIZE
	if volumeSize+32*ISO_SECTOR_SIZE < iso.f.Size() {
		iso.layers[1] = udf.NewUdfFromReader(io.NewSectionReader(iso.f, volumeSize, iso.f.Size()-volumeSize))
		log.Printf("[vfs] [iso] Detected second layer of disk. Start: %x (%x)", volumeSize+16*ISO_SECTOR_SIZE, volumeSize)
		iso.secondLayerStart = volumeSize
	}
}

// NewIsoDriver keeps f open for the lifetime of the driver.
func NewIsoDriver(f File) (*IsoDriver, error) {
	if err := f.Open(); err != nil {
		return nil, err
	}
	iso := &IsoDriver{f: f}
	iso.openStreams()
	return iso, nil
}

type IsoDriverFile struct {
	f udf.File
}

func (f *IsoDriverFile) Init(parent Directory) {}
func (f *IsoDriverFile) Name() string          { return f.f.Name() }
func (f *IsoDriverFile) IsDirectory() bool     { return f.f.IsDir() }
func (f *IsoDriverFile) Size() int64           { return f.f.Size() }
func (f *IsoDriverFile) Open() error           { return nil }
func (f *IsoDriverFile) Close() error          { return nil }
func (f *IsoDriverFile) Reader() (*io.SectionReader, error) {
	return f.f.NewReader(), nil
}
func (f *IsoDriverFile) ReadAt(b []byte, off int64) (n int, err error) {
	return f.f.NewReader().ReadAt(b, off)
}
