package formats

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	polygonFlagUntextured = 0x0004
	materialSize          = 0x10
)

// readPolygons decodes the 12-byte polygon records:
// u16 v1, v2, v3; u16 flags; u16 unused; u16 material offset.
func (d *unitDecoder) readPolygons() error {
	for p := range d.model.Polygons {
		recordStart := d.hdr.PolygonStart + uint32(p)*polygonStride
		if err := d.r.Seek(recordStart); err != nil {
			return wrapRead(err, "polygon", d.hdr.PolygonStart)
		}
		if err := d.readPolygon(p, recordStart); err != nil {
			return err
		}
	}
	return nil
}

func (d *unitDecoder) readPolygon(p int, recordStart uint32) error {
	poly := &d.model.Polygons[p]

	var corners [3]*Vertex
	for i := range corners {
		index, err := d.r.U16()
		if err != nil {
			return wrapRead(err, "polygon", recordStart)
		}
		if int(index) >= len(d.model.Vertices) {
			return fmt.Errorf("%w: polygon %d at 0x%x references vertex %d of %d",
				ErrMalformedOffset, p, recordStart, index, len(d.model.Vertices))
		}
		corners[i] = &d.model.Vertices[index]
	}
	poly.V1, poly.V2, poly.V3 = corners[0], corners[1], corners[2]

	flags, err := d.r.U16()
	if err != nil {
		return wrapRead(err, "polygon", recordStart)
	}
	if err := d.r.Skip(2); err != nil {
		return wrapRead(err, "polygon", recordStart)
	}
	materialOffset, err := d.r.U16()
	if err != nil {
		return wrapRead(err, "polygon", recordStart)
	}

	mat := &Material{TextureUsed: flags&polygonFlagUntextured == 0}
	if materialOffset == noMaterialOffset {
		mat.TextureUsed = false
	}

	if mat.TextureUsed {
		materialPos, err := d.materialPos(p, materialOffset)
		if err != nil {
			return err
		}
		if err := d.r.Seek(materialPos); err != nil {
			return wrapRead(err, "material", materialPos)
		}
		if err := d.readMaterial(poly, mat); err != nil {
			return wrapRead(err, "material", materialPos)
		}
	} else {
		mat.Colour = 0xFFFFFFFF
	}
	mat.Colour = FlipRedAndBlue(mat.Colour)
	poly.Material = mat

	// Materials live out of line, so always resume at the next record.
	return d.r.Seek(recordStart + polygonStride)
}

// materialPos returns the absolute position of a material record, which must
// lie inside the data segment.
func (d *unitDecoder) materialPos(p int, offset uint16) (uint32, error) {
	pos := uint64(d.hdr.MaterialStart) + uint64(offset)
	if pos < uint64(d.hdr.DataStart) || pos+materialSize > uint64(d.r.Len()) {
		return 0, fmt.Errorf("%w: material table at 0x%x, polygon %d record at 0x%x",
			ErrMalformedOffset, d.hdr.MaterialStart, p, pos)
	}
	return uint32(pos), nil
}

// readMaterial decodes a material record:
// u8 u0, v0; u16 clut; u8 u1, v1; u16 texture page; u8 u2, v2; u16 unused; u32 colour.
func (d *unitDecoder) readMaterial(poly *Polygon, mat *Material) error {
	readUV := func(corner int) error {
		for i := 0; i < 2; i++ {
			b, err := d.r.U8()
			if err != nil {
				return err
			}
			poly.UVs[corner][i] = b
		}
		return nil
	}

	if err := readUV(0); err != nil {
		return err
	}
	clut, err := d.r.U16()
	if err != nil {
		return err
	}
	if err := readUV(1); err != nil {
		return err
	}
	page, err := d.r.U16()
	if err != nil {
		return err
	}
	if err := readUV(2); err != nil {
		return err
	}
	if err := d.r.Skip(2); err != nil {
		return err
	}
	colour, err := d.r.U32()
	if err != nil {
		return err
	}

	mat.Clut = clut
	mat.TexturePage = page
	mat.Colour = colour
	return nil
}

// dedupMaterials makes polygons with equal materials share one instance and
// publishes the distinct materials in first-use order.
func (d *unitDecoder) dedupMaterials() {
	polys := d.model.Polygons
	if len(polys) == 0 {
		return
	}

	list := NewMaterialList(polys[0].Material)
	replaced := 0
	for p := 1; p < len(polys); p++ {
		shared := list.Add(polys[p].Material)
		if shared != polys[p].Material {
			polys[p].Material = shared
			replaced++
		}
	}

	d.model.Materials = list.Materials()
	d.log.Debug("materials",
		zap.Int("distinct", list.Len()),
		zap.Int("shared", replaced),
	)
}
