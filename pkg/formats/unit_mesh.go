package formats

import (
	"fmt"

	"go.uber.org/zap"
)

// finaliseMeshes turns each recorded boundary into concrete polygon and
// vertex arrays. Boundaries are consumed in the order they were recorded,
// each owning the stream run since the previous one.
func (d *unitDecoder) finaliseMeshes() error {
	start := 0
	for i, b := range d.model.Boundaries {
		mesh := d.model.Meshes[b.Mesh]
		run := d.model.stream[start:b.End]

		mesh.PolygonCount = mesh.IndexCount / 3
		if len(run) != mesh.PolygonCount {
			return fmt.Errorf("mesh %d: %d indices recorded but stream run holds %d polygons",
				i, mesh.IndexCount, len(run))
		}

		mesh.Name = fmt.Sprintf("%s-%d", d.model.Name, i)
		mesh.Polygons = make([]*Polygon, mesh.PolygonCount)
		mesh.Vertices = make([]*Vertex, mesh.IndexCount)
		for p, id := range run {
			poly := &d.model.Polygons[id]
			mesh.Polygons[p] = poly
			mesh.Vertices[3*p+0] = poly.V1
			mesh.Vertices[3*p+1] = poly.V2
			mesh.Vertices[3*p+2] = poly.V3
		}

		d.log.Debug("mesh",
			zap.String("name", mesh.Name),
			zap.Int("first", start),
			zap.Int("polygons", mesh.PolygonCount),
		)
		start = b.End
	}
	return nil
}

// RenderMeshes returns the finalized meshes in the order they were recorded.
func (m *UnitModel) RenderMeshes() []*Mesh {
	meshes := make([]*Mesh, len(m.Boundaries))
	for i, b := range m.Boundaries {
		meshes[i] = m.Meshes[b.Mesh]
	}
	return meshes
}

// Stream returns a copy of the polygon indices collected from BSP leaves,
// in walk order.
func (m *UnitModel) Stream() []int {
	return append([]int(nil), m.stream...)
}

// MeshRun returns the stream slice that backs the i-th finalized mesh.
func (m *UnitModel) MeshRun(i int) []int {
	start := 0
	if i > 0 {
		start = m.Boundaries[i-1].End
	}
	return append([]int(nil), m.stream[start:m.Boundaries[i].End]...)
}
