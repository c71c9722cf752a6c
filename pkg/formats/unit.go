package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/gex-unit/pkg/binreader"
	"github.com/Faultbox/gex-unit/pkg/math"
)

// Unit model errors.
var (
	ErrTruncatedUnitData    = errors.New("truncated unit model data")
	ErrMalformedOffset      = errors.New("malformed unit model offset")
	ErrUnterminatedSpectral = errors.New("unterminated spectral vertex table")
)

// ErrTruncated is returned when any read runs past the end of the data.
var ErrTruncated = binreader.ErrTruncated

// Record sizes and sentinels.
const (
	unitHeaderOffset  = 0x10
	unitHeaderSize    = 0x44
	vertexStride      = 0x0C
	polygonStride     = 0x0C
	bspRecordStride   = 0x24
	noMaterialOffset  = 0xFFFF
	spectralSentinel  = 0xFFFF
	maxSpectralShifts = 0xFFFF
	maxBSPDepth       = 256
	maxOffset         = 0xFFFFFFFF
)

// DecodeOptions controls how a unit model is decoded.
type DecodeOptions struct {
	// DataStart is the absolute offset of the data segment that all
	// table offsets in the model are relative to.
	DataStart uint32
	// IgnoreVertexColours forces every primary vertex colour to opaque white.
	IgnoreVertexColours bool
	// CollectDepth is the deepest BSP level that still starts its own mesh.
	// Nodes below it add their polygons to the nearest collecting ancestor.
	CollectDepth int
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// DefaultDecodeOptions returns options matching the stock exporter: one mesh
// per BSP root and vertex colours kept.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{CollectDepth: 0}
}

// Vertex is a model vertex. Alt fields hold the spectral variant.
type Vertex struct {
	Position        math.Vec3
	PhysPosition    math.Vec3
	AltPhysPosition math.Vec3
	Colour          uint32
	AltColour       uint32
	ColourID        int
}

// Polygon is a triangle referencing three model vertices.
type Polygon struct {
	V1, V2, V3 *Vertex
	UVs        [3][2]uint8 // Per-corner texture coordinates, zero when untextured
	Material   *Material
	Visible    bool // Reached by a BSP leaf
}

// Mesh is a partition of the model's polygons produced by the BSP walk.
type Mesh struct {
	Name         string
	IndexCount   int // 3 per polygon, accumulated during the walk
	PolygonCount int
	Polygons     []*Polygon
	Vertices     []*Vertex // One entry per polygon corner
}

// Tree is a node of the BSP hierarchy. Children and Mesh index into the
// model's Trees and Meshes arenas.
type Tree struct {
	Offset   uint32 // Absolute offset of the node record
	Depth    int
	Leaf     bool // Set when the node, or a node collapsed into it, is a leaf
	Mesh     int
	Children []int
}

// BSPRoot is an entry of the top-level BSP table.
type BSPRoot struct {
	ID         uint16
	DrawTester bool
	NodeOffset uint32 // Absolute offset, 0 when the root has no tree
	Tree       int    // Index into Trees, -1 when absent
}

// MeshBoundary marks where a finished mesh's run ends in the polygon stream.
type MeshBoundary struct {
	Mesh int
	End  int
}

// UnitModel is a decoded unit model.
type UnitModel struct {
	Name       string
	Header     UnitHeader
	Vertices   []Vertex
	Polygons   []Polygon
	Materials  []*Material // Deduplicated, in first-use order
	Roots      []BSPRoot
	Trees      []Tree
	Meshes     []*Mesh
	Boundaries []MeshBoundary

	stream []int
}

// ParseUnitModel decodes the unit model whose header starts at modelOffset.
// On error no partially decoded model is returned.
func ParseUnitModel(name string, data []byte, modelOffset uint32, opts DecodeOptions) (*UnitModel, error) {
	if opts.CollectDepth < 0 {
		opts.CollectDepth = 0
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	d := &unitDecoder{
		r:      binreader.New(data),
		opts:   opts,
		log:    log.With(zap.String("model", name)),
		model:  &UnitModel{Name: name},
		onPath: make(map[uint32]bool),
	}

	if err := d.decode(modelOffset); err != nil {
		return nil, err
	}
	return d.model, nil
}

// ParseUnitModelFile decodes a unit model from a file on disk.
func ParseUnitModelFile(path string, modelOffset uint32, opts DecodeOptions) (*UnitModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit model file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseUnitModel(name, data, modelOffset, opts)
}

type unitDecoder struct {
	r      *binreader.Reader
	opts   DecodeOptions
	log    *zap.Logger
	model  *UnitModel
	hdr    *UnitHeader
	onPath map[uint32]bool // BSP nodes on the current walk path
}

func (d *unitDecoder) decode(modelOffset uint32) error {
	if err := d.readHeader(modelOffset); err != nil {
		return err
	}
	if err := d.readVertices(); err != nil {
		return err
	}
	if err := d.readSpectralData(); err != nil {
		return err
	}
	if !d.hdr.HasPolygons() {
		d.log.Debug("no polygon table, skipping polygons and BSP trees")
		return nil
	}
	if err := d.readPolygons(); err != nil {
		return err
	}
	if err := d.readBSPTrees(); err != nil {
		return err
	}
	d.dedupMaterials()
	return d.finaliseMeshes()
}

// GroupCount returns the number of top-level BSP trees.
func (m *UnitModel) GroupCount() int {
	return int(m.Header.BSPTreeCount)
}

// VisiblePolygonCount returns how many polygons were reached by a BSP leaf.
func (m *UnitModel) VisiblePolygonCount() int {
	n := 0
	for i := range m.Polygons {
		if m.Polygons[i].Visible {
			n++
		}
	}
	return n
}

// Bounds returns the box enclosing both physical and spectral positions.
func (m *UnitModel) Bounds() math.Bounds {
	b := math.EmptyBounds()
	for i := range m.Vertices {
		b.Extend(m.Vertices[i].PhysPosition)
		b.Extend(m.Vertices[i].AltPhysPosition)
	}
	return b
}
