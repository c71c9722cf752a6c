package formats

import (
	"bytes"
	"encoding/binary"
)

// Helper types for building synthetic unit model data.

type testVertex struct {
	pos    [3]int16
	colour uint32
}

type testPolygon struct {
	v        [3]uint16
	flags    uint16
	material int // index into testUnit.materials, -1 for 0xFFFF
}

type testMaterial struct {
	uv     [3][2]uint8
	clut   uint16
	page   uint16
	colour uint32
}

type testShift struct {
	base   [3]int16
	index  uint16
	offset [3]int16
}

type testNode struct {
	leaf      bool
	firstPoly int
	polyCount int
	children  [2]int // indices into testUnit.nodes, -1 for none
}

type testRoot struct {
	node      int // index into testUnit.nodes, -1 for none
	drawFlags int32
	id        uint16
}

type testUnit struct {
	dataStart uint32

	vertices  []testVertex
	polygons  []testPolygon
	materials []testMaterial

	spectralColours []uint16 // nil when absent

	hasShifts    bool
	shifts       []testShift
	noTerminator bool

	roots []testRoot
	nodes []testNode
}

// layout holds data-relative table offsets of a built unit.
type layout struct {
	vertexStart   uint32
	polygonStart  uint32
	materialStart uint32
	colourStart   uint32
	shiftStart    uint32
	rootStart     uint32
	nodeStart     uint32
}

const testMaterialSize = 16

func align4(n uint32) uint32 {
	return (n + 3) &^ 3
}

func (u *testUnit) layout() layout {
	var l layout
	off := uint32(unitHeaderOffset + unitHeaderSize)
	off = align4(off)

	l.vertexStart = off
	off += uint32(len(u.vertices)) * vertexStride
	l.polygonStart = off
	off += uint32(len(u.polygons)) * polygonStride
	l.materialStart = off
	off += uint32(len(u.materials)) * testMaterialSize
	if u.spectralColours != nil {
		l.colourStart = off
		off = align4(off + uint32(len(u.spectralColours))*2)
	}
	if u.hasShifts {
		l.shiftStart = off
		off += uint32(len(u.shifts)) * 14
		if !u.noTerminator {
			off += 8
		}
		off = align4(off)
	}
	l.rootStart = off
	off += uint32(len(u.roots)) * bspRecordStride
	l.nodeStart = off
	return l
}

// nodeOffset is the data-relative offset of node i, as root records store it.
func (u *testUnit) nodeOffset(l layout, i int) uint32 {
	if i < 0 {
		return 0
	}
	return l.nodeStart + uint32(i)*bspNodeSize
}

// childOffset is the absolute offset of node i, as node records store it.
func (u *testUnit) childOffset(l layout, i int) uint32 {
	if i < 0 {
		return 0
	}
	return u.dataStart + u.nodeOffset(l, i)
}

// Header field positions relative to the model offset.
const testHeaderMaterialStart = unitHeaderOffset + 0x24

// build returns the model bytes; the header starts at dataStart.
func (u *testUnit) build() []byte {
	l := u.layout()
	var seg bytes.Buffer
	w := func(v any) { binary.Write(&seg, binary.LittleEndian, v) }
	pad := func(to uint32) {
		for uint32(seg.Len()) < to {
			seg.WriteByte(0)
		}
	}

	// Header
	pad(unitHeaderOffset)
	w(uint32(len(u.vertices)))
	w(uint32(len(u.polygons)))
	w(uint32(0))
	w(l.vertexStart)
	w(l.polygonStart)
	w([4]uint32{})
	w(l.materialStart)
	w([3]uint32{})
	w(l.shiftStart)
	w(l.colourStart)
	w(uint32(len(u.roots)))
	w(l.rootStart)

	pad(l.vertexStart)
	for _, v := range u.vertices {
		w(v.pos)
		w(uint16(0))
		w(v.colour)
	}

	for _, p := range u.polygons {
		w(p.v)
		w(p.flags)
		w(uint16(0))
		if p.material < 0 {
			w(uint16(noMaterialOffset))
		} else {
			w(uint16(p.material * testMaterialSize))
		}
	}

	for _, m := range u.materials {
		w(m.uv[0])
		w(m.clut)
		w(m.uv[1])
		w(m.page)
		w(m.uv[2])
		w(uint16(0))
		w(m.colour)
	}

	if u.spectralColours != nil {
		pad(l.colourStart)
		w(u.spectralColours)
	}

	if u.hasShifts {
		pad(l.shiftStart)
		for _, s := range u.shifts {
			w(s.base)
			w(s.index)
			w(s.offset)
		}
		if !u.noTerminator {
			w([3]int16{})
			w(uint16(spectralSentinel))
		}
	}

	pad(l.rootStart)
	for _, r := range u.roots {
		w(u.nodeOffset(l, r.node))
		w([3]uint32{})
		w(r.drawFlags)
		w([3]uint16{})
		w(r.id)
		w([2]uint32{})
	}

	for _, n := range u.nodes {
		w([2]uint32{})
		if n.leaf {
			w(l.polygonStart + uint32(n.firstPoly)*polygonStride)
			w(uint16(n.polyCount))
			w(uint8(bspNodeFlagLeaf))
			w(uint8(0))
		} else {
			w(uint32(0))
			w(uint16(0))
			w(uint8(0))
			w(uint8(0))
		}
		w(uint32(0))
		w(u.childOffset(l, n.children[0]))
		w(u.childOffset(l, n.children[1]))
		w([2]uint32{})
	}

	data := make([]byte, u.dataStart, int(u.dataStart)+seg.Len())
	return append(data, seg.Bytes()...)
}

func (u *testUnit) parse(opts DecodeOptions) (*UnitModel, error) {
	opts.DataStart = u.dataStart
	return ParseUnitModel("test", u.build(), u.dataStart, opts)
}

// quad returns four vertices and two untextured polygons sharing an edge.
func quad() *testUnit {
	return &testUnit{
		vertices: []testVertex{
			{pos: [3]int16{0, 0, 0}, colour: 0x00112233},
			{pos: [3]int16{10, 0, 0}, colour: 0x00445566},
			{pos: [3]int16{0, 10, 0}, colour: 0x00778899},
			{pos: [3]int16{10, 10, 0}, colour: 0x00AABBCC},
		},
		polygons: []testPolygon{
			{v: [3]uint16{0, 1, 2}, material: -1},
			{v: [3]uint16{1, 2, 3}, material: -1},
		},
	}
}

func leafNode(first, count int) testNode {
	return testNode{leaf: true, firstPoly: first, polyCount: count, children: [2]int{-1, -1}}
}

func splitNode(a, b int) testNode {
	return testNode{children: [2]int{a, b}}
}
