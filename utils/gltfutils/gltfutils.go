package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

// Cacher holds a document under construction and the indices already
// written for shared resources (materials, textures).
type Cacher struct {
	Doc   *gltf.Document
	cache map[string]interface{}
}

func NewCacher() *Cacher {
	return &Cacher{
		Doc:   gltf.NewDocument(),
		cache: make(map[string]interface{}),
	}
}

func (c *Cacher) AddCache(key string, v interface{}) {
	c.cache[key] = v
}

func (c *Cacher) GetCached(key string) (interface{}, bool) {
	v, ok := c.cache[key]
	return v, ok
}

func (c *Cacher) GetCachedOr(key string, create func() interface{}) interface{} {
	if v, ok := c.cache[key]; ok {
		return v
	}
	v := create()
	c.cache[key] = v
	return v
}

// ExportBinary writes doc as glb. Nodes not yet in the default scene are added to it.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	inScene := make(map[uint32]bool)
	for _, n := range doc.Scenes[0].Nodes {
		inScene[n] = true
	}
	for iNode := range doc.Nodes {
		if !inScene[uint32(iNode)] {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
