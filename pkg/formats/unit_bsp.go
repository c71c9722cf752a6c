package formats

import (
	"fmt"

	"go.uber.org/zap"
)

// BSP node record layout (36 bytes).
const (
	bspNodeSize        = 0x24
	bspLeafPolygons    = 0x08 // u32 polygon offset, then u16 run length
	bspNodeFlags       = 0x0E
	bspNodeChildren    = 0x14 // two u32 node offsets
	bspNodeFlagLeaf    = 0x02
	bspRootDrawTester  = 0x10
	bspRootID          = 0x1A
	bspRootNoDrawTests = 0x01
)

// readBSPTrees walks every top-level BSP tree, marking reachable polygons
// visible and recording one mesh boundary per collecting node.
func (d *unitDecoder) readBSPTrees() error {
	d.model.Roots = make([]BSPRoot, d.hdr.BSPTreeCount)
	d.model.stream = make([]int, 0, len(d.model.Polygons))

	for t := range d.model.Roots {
		root, err := d.readBSPRoot(d.hdr.BSPTreeStart + uint32(t)*bspRecordStride)
		if err != nil {
			return err
		}
		root.Tree, err = d.readBSPNode(root.NodeOffset, -1, 0)
		if err != nil {
			return fmt.Errorf("BSP tree %d: %w", t, err)
		}
		d.model.Roots[t] = root
	}

	d.log.Debug("BSP trees",
		zap.Int("roots", len(d.model.Roots)),
		zap.Int("nodes", len(d.model.Trees)),
		zap.Int("meshes", len(d.model.Boundaries)),
		zap.Int("stream", len(d.model.stream)),
	)
	return nil
}

func (d *unitDecoder) readBSPRoot(recordStart uint32) (BSPRoot, error) {
	root := BSPRoot{Tree: -1}

	if err := d.r.Seek(recordStart); err != nil {
		return root, wrapRead(err, "BSP tree", recordStart)
	}
	nodeOffset, err := d.r.U32()
	if err != nil {
		return root, wrapRead(err, "BSP tree", recordStart)
	}
	if err := d.r.Seek(recordStart + bspRootDrawTester); err != nil {
		return root, wrapRead(err, "BSP tree", recordStart)
	}
	drawFlags, err := d.r.I32()
	if err != nil {
		return root, wrapRead(err, "BSP tree", recordStart)
	}
	if err := d.r.Seek(recordStart + bspRootID); err != nil {
		return root, wrapRead(err, "BSP tree", recordStart)
	}
	id, err := d.r.U16()
	if err != nil {
		return root, wrapRead(err, "BSP tree", recordStart)
	}

	root.ID = id
	root.DrawTester = drawFlags&bspRootNoDrawTests != bspRootNoDrawTests
	if nodeOffset != 0 {
		pos := uint64(d.hdr.DataStart) + uint64(nodeOffset)
		if pos > maxOffset {
			return root, fmt.Errorf("%w: BSP tree at 0x%x points past 4 GiB", ErrMalformedOffset, recordStart)
		}
		root.NodeOffset = uint32(pos)
	}
	return root, nil
}

// readBSPNode decodes the node at offset (absolute, 0 for none) and its
// subtree. Nodes at or above the collect depth get their own Tree and Mesh;
// deeper nodes add to parent's. Returns the Tree index that holds the node,
// or -1 when there is no node.
//
// Only the root offset is data-relative. Child offsets in node records are
// already absolute. A node may be shared by several parents and is walked
// once per reference; only a node that is its own ancestor is rejected.
func (d *unitDecoder) readBSPNode(offset uint32, parent int, depth int) (int, error) {
	if offset == 0 {
		return -1, nil
	}
	if depth > maxBSPDepth {
		return -1, fmt.Errorf("%w: BSP node at 0x%x deeper than %d", ErrMalformedOffset, offset, maxBSPDepth)
	}
	if offset < d.hdr.DataStart || uint64(offset)+bspNodeSize > uint64(d.r.Len()) {
		return -1, fmt.Errorf("%w: BSP node at 0x%x", ErrMalformedOffset, offset)
	}
	if d.onPath[offset] {
		return -1, fmt.Errorf("%w: BSP node at 0x%x is its own ancestor", ErrMalformedOffset, offset)
	}
	d.onPath[offset] = true
	defer delete(d.onPath, offset)

	if err := d.r.Seek(offset + bspNodeFlags); err != nil {
		return -1, wrapRead(err, "BSP node", offset)
	}
	flags, err := d.r.U8()
	if err != nil {
		return -1, wrapRead(err, "BSP node", offset)
	}
	isLeaf := flags&bspNodeFlagLeaf != 0

	collects := depth <= d.opts.CollectDepth
	tree := parent
	if collects {
		tree = d.newTree(offset, depth)
		if parent >= 0 {
			d.model.Trees[parent].Children = append(d.model.Trees[parent].Children, tree)
		}
	}
	mesh := d.model.Trees[tree].Mesh

	if isLeaf {
		// The collecting tree is a leaf once any leaf in its subtree is reached.
		d.model.Trees[tree].Leaf = true
		if err := d.r.Seek(offset + bspLeafPolygons); err != nil {
			return -1, wrapRead(err, "BSP node", offset)
		}
		if err := d.readBSPLeaf(offset, mesh); err != nil {
			return -1, err
		}
	} else {
		if err := d.r.Seek(offset + bspNodeChildren); err != nil {
			return -1, wrapRead(err, "BSP node", offset)
		}
		var children [2]uint32
		for i := range children {
			child, err := d.r.U32()
			if err != nil {
				return -1, wrapRead(err, "BSP node", offset)
			}
			children[i] = child
		}
		for _, child := range children {
			if _, err := d.readBSPNode(child, tree, depth+1); err != nil {
				return -1, err
			}
		}
	}

	if collects && d.model.Meshes[mesh].IndexCount > 0 {
		d.model.Boundaries = append(d.model.Boundaries, MeshBoundary{
			Mesh: mesh,
			End:  len(d.model.stream),
		})
	}
	return tree, nil
}

func (d *unitDecoder) newTree(offset uint32, depth int) int {
	d.model.Meshes = append(d.model.Meshes, &Mesh{})
	d.model.Trees = append(d.model.Trees, Tree{
		Offset: offset,
		Depth:  depth,
		Mesh:   len(d.model.Meshes) - 1,
	})
	return len(d.model.Trees) - 1
}

// readBSPLeaf reads a leaf's polygon run and appends it to the stream.
func (d *unitDecoder) readBSPLeaf(nodeOffset uint32, mesh int) error {
	polygonOffset, err := d.r.U32()
	if err != nil {
		return wrapRead(err, "BSP leaf", nodeOffset)
	}
	count, err := d.r.U16()
	if err != nil {
		return wrapRead(err, "BSP leaf", nodeOffset)
	}

	polygonPos := uint64(d.hdr.DataStart) + uint64(polygonOffset)
	if polygonPos < uint64(d.hdr.PolygonStart) {
		return fmt.Errorf("%w: BSP leaf at 0x%x points before polygon table (0x%x)",
			ErrMalformedOffset, nodeOffset, polygonPos)
	}
	first := int((polygonPos - uint64(d.hdr.PolygonStart)) / polygonStride)
	if first+int(count) > len(d.model.Polygons) {
		return fmt.Errorf("%w: BSP leaf at 0x%x covers polygons %d..%d of %d",
			ErrMalformedOffset, nodeOffset, first, first+int(count), len(d.model.Polygons))
	}

	m := d.model.Meshes[mesh]
	for p := first; p < first+int(count); p++ {
		poly := &d.model.Polygons[p]
		poly.Visible = true
		poly.Material.Visible = true
		d.model.stream = append(d.model.stream, p)
		m.IndexCount += 3
	}
	return nil
}
