package formats

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// UnitHeader holds the table layout of a unit model. Offsets are absolute;
// the spectral tables are 0 when absent.
type UnitHeader struct {
	DataStart           uint32
	ModelOffset         uint32
	VertexCount         uint32
	PolygonCount        uint32
	VertexStart         uint32
	PolygonStart        uint32
	MaterialStart       uint32
	SpectralVertexStart uint32
	SpectralColourStart uint32
	BSPTreeCount        uint32
	BSPTreeStart        uint32
}

// HasPolygons reports whether the model carries a polygon table.
func (h *UnitHeader) HasPolygons() bool {
	return h.PolygonStart != 0 && h.PolygonCount != 0
}

func (d *unitDecoder) readHeader(modelOffset uint32) error {
	if uint64(modelOffset)+unitHeaderOffset+unitHeaderSize > uint64(d.r.Len()) {
		return fmt.Errorf("%w: header at 0x%x", ErrTruncatedUnitData, modelOffset)
	}

	h := &UnitHeader{DataStart: d.opts.DataStart, ModelOffset: modelOffset}
	if err := d.r.Seek(modelOffset + unitHeaderOffset); err != nil {
		return err
	}

	// Layout after the shared header: counts, then data-relative table offsets
	// separated by fields this decoder does not use.
	var raw struct {
		vertexStart, polygonStart, materialStart      uint32
		spectralVertex, spectralColour, bspTreeStart uint32
	}
	fields := []struct {
		dst  *uint32
		skip int
	}{
		{&h.VertexCount, 0},
		{&h.PolygonCount, 0},
		{&raw.vertexStart, 4},
		{&raw.polygonStart, 0},
		{&raw.materialStart, 0x10},
		{&raw.spectralVertex, 0x0C},
		{&raw.spectralColour, 0},
		{&h.BSPTreeCount, 0},
		{&raw.bspTreeStart, 0},
	}
	for _, f := range fields {
		if err := d.r.Skip(f.skip); err != nil {
			return fmt.Errorf("%w: reading header", ErrTruncatedUnitData)
		}
		v, err := d.r.U32()
		if err != nil {
			return fmt.Errorf("%w: reading header", ErrTruncatedUnitData)
		}
		*f.dst = v
	}

	// A zero raw offset marks an absent optional table and stays 0.
	relocations := []struct {
		name     string
		raw      uint32
		dst      *uint32
		optional bool
	}{
		{"vertex", raw.vertexStart, &h.VertexStart, false},
		{"polygon", raw.polygonStart, &h.PolygonStart, true},
		{"material", raw.materialStart, &h.MaterialStart, false},
		{"spectral vertex", raw.spectralVertex, &h.SpectralVertexStart, true},
		{"spectral colour", raw.spectralColour, &h.SpectralColourStart, true},
		{"BSP tree", raw.bspTreeStart, &h.BSPTreeStart, false},
	}
	for _, rel := range relocations {
		if rel.optional && rel.raw == 0 {
			continue
		}
		pos := uint64(h.DataStart) + uint64(rel.raw)
		if pos > maxOffset {
			return fmt.Errorf("%w: %s table offset 0x%x past 4 GiB from data start 0x%x",
				ErrMalformedOffset, rel.name, rel.raw, h.DataStart)
		}
		*rel.dst = uint32(pos)
	}

	if err := d.checkTable("vertex", h.VertexStart, h.VertexCount, vertexStride); err != nil {
		return err
	}
	if h.HasPolygons() {
		if err := d.checkTable("polygon", h.PolygonStart, h.PolygonCount, polygonStride); err != nil {
			return err
		}
		if err := d.checkTable("BSP tree", h.BSPTreeStart, h.BSPTreeCount, bspRecordStride); err != nil {
			return err
		}
	}
	if h.SpectralColourStart != 0 {
		if err := d.checkTable("spectral colour", h.SpectralColourStart, h.VertexCount, 2); err != nil {
			return err
		}
	}

	d.hdr = h
	d.model.Header = *h
	d.model.Vertices = make([]Vertex, h.VertexCount)
	if h.HasPolygons() {
		d.model.Polygons = make([]Polygon, h.PolygonCount)
	}

	d.log.Debug("unit header",
		zap.Uint32("vertices", h.VertexCount),
		zap.Uint32("polygons", h.PolygonCount),
		zap.Uint32("bsp_trees", h.BSPTreeCount),
		zap.Uint32("vertex_start", h.VertexStart),
		zap.Uint32("polygon_start", h.PolygonStart),
		zap.Uint32("material_start", h.MaterialStart),
		zap.Uint32("spectral_vertex_start", h.SpectralVertexStart),
		zap.Uint32("spectral_colour_start", h.SpectralColourStart),
	)
	return nil
}

// checkTable verifies that count records of stride bytes at start lie
// inside the data.
func (d *unitDecoder) checkTable(name string, start, count, stride uint32) error {
	if count == 0 {
		return nil
	}
	if start < d.opts.DataStart || uint64(start)+uint64(count)*uint64(stride) > uint64(d.r.Len()) {
		return fmt.Errorf("%w: %s table at 0x%x with %d records", ErrMalformedOffset, name, start, count)
	}
	return nil
}

// wrapRead tags a read failure with the table it happened in.
func wrapRead(err error, table string, off uint32) error {
	if errors.Is(err, ErrTruncated) {
		return fmt.Errorf("%s table at 0x%x: %w", table, off, err)
	}
	return err
}
