package pointcloud

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// GLTFOptions describes the provenance and resource layout of an export
type GLTFOptions struct {
	// Resource is the file name of the external vertex buffer written next to
	// a .gltf model. Ignored for .glb, which embeds the buffer. Defaults to
	// the model name with a .bin extension.
	Resource string

	// Source, Variable and ExportID are stored in the asset extras
	Source   string
	Variable string
	ExportID string
}

// Document builds a glTF scene holding a single POINTS primitive whose
// POSITION accessor reads the whole vertex buffer. An empty uri embeds the
// buffer when the document is saved as binary.
func Document(vb *VertexBuffer, uri string, opts GLTFOptions) *gltf.Document {
	extras := map[string]string{}
	if opts.Source != "" {
		extras["source"] = opts.Source
	}
	if opts.Variable != "" {
		extras["variable"] = opts.Variable
	}
	if opts.ExportID != "" {
		extras["exportId"] = opts.ExportID
	}

	asset := gltf.Asset{Version: "2.0", Generator: "ncexport"}
	if len(extras) > 0 {
		asset.Extras = extras
	}

	return &gltf.Document{
		Asset:  asset,
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Nodes:  []*gltf.Node{{Mesh: gltf.Index(0)}},
		Meshes: []*gltf.Mesh{{
			Primitives: []*gltf.Primitive{{
				Attributes: gltf.Attribute{gltf.POSITION: 0},
				Mode:       gltf.PrimitivePoints,
			}},
		}},
		Buffers: []*gltf.Buffer{{
			ByteLength: uint32(len(vb.Data)),
			URI:        uri,
			Data:       vb.Data,
		}},
		BufferViews: []*gltf.BufferView{{
			Buffer:     0,
			ByteLength: uint32(len(vb.Data)),
			Target:     gltf.TargetArrayBuffer,
		}},
		Accessors: []*gltf.Accessor{{
			BufferView:    gltf.Index(0),
			ComponentType: gltf.ComponentFloat,
			Count:         uint32(vb.Count),
			Type:          gltf.AccessorVec3,
			Min:           vb.Bounds.Min[:],
			Max:           vb.Bounds.Max[:],
		}},
	}
}

// DefaultResource returns the vertex buffer file name used for a .gltf model
// when none is given.
func DefaultResource(modelPath string) string {
	base := filepath.Base(modelPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".bin"
}

// WriteGLTF saves vb as a point cloud. The container layout follows the
// extension of path: .glb embeds the buffer, .gltf writes JSON plus an
// external buffer file in the same directory.
func WriteGLTF(path string, vb *VertexBuffer, opts GLTFOptions) error {
	if vb == nil || vb.Count == 0 {
		return ErrEmptyPointSet
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		if err := gltf.SaveBinary(Document(vb, "", opts), path); err != nil {
			return fmt.Errorf("failed to write glb: %w", err)
		}
	case ".gltf":
		res := opts.Resource
		if res == "" {
			res = DefaultResource(path)
		}
		if err := gltf.Save(Document(vb, filepath.Base(res), opts), path); err != nil {
			return fmt.Errorf("failed to write gltf: %w", err)
		}
	default:
		return fmt.Errorf("unsupported mesh container extension %q (want .glb or .gltf)", filepath.Ext(path))
	}
	return nil
}
