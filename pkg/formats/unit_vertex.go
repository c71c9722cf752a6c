package formats

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gex-unit/pkg/math"
)

// readVertices decodes the fixed 12-byte vertex records:
// i16 x, y, z; u16 unused; u32 colour.
func (d *unitDecoder) readVertices() error {
	if err := d.r.Seek(d.hdr.VertexStart); err != nil {
		return wrapRead(err, "vertex", d.hdr.VertexStart)
	}

	for v := range d.model.Vertices {
		if err := d.readVertex(v); err != nil {
			return wrapRead(err, "vertex", d.hdr.VertexStart)
		}
	}
	return nil
}

func (d *unitDecoder) readVertex(v int) error {
	pos, err := d.readShortVec()
	if err != nil {
		return err
	}
	if err := d.r.Skip(2); err != nil {
		return err
	}
	raw, err := d.r.U32()
	if err != nil {
		return err
	}

	colour := raw | 0xFF000000
	if d.opts.IgnoreVertexColours {
		colour = 0xFFFFFFFF
	}
	colour = FlipRedAndBlue(colour)

	d.model.Vertices[v] = Vertex{
		Position:        pos,
		PhysPosition:    pos,
		AltPhysPosition: pos,
		Colour:          colour,
		AltColour:       colour,
		ColourID:        v,
	}
	return nil
}

// readSpectralData overlays the alternate colours and positions.
func (d *unitDecoder) readSpectralData() error {
	if d.hdr.SpectralColourStart != 0 {
		if err := d.readSpectralColours(); err != nil {
			return err
		}
	}
	if d.hdr.SpectralVertexStart != 0 {
		if err := d.readSpectralVertices(); err != nil {
			return err
		}
	}
	return nil
}

// readSpectralColours reads one packed 5-5-5 colour per vertex.
func (d *unitDecoder) readSpectralColours() error {
	start := d.hdr.SpectralColourStart
	if err := d.r.Seek(start); err != nil {
		return wrapRead(err, "spectral colour", start)
	}
	for v := range d.model.Vertices {
		packed, err := d.r.U16()
		if err != nil {
			return wrapRead(err, "spectral colour", start)
		}
		vert := &d.model.Vertices[v]
		vert.AltColour = UnpackSpectralColour(packed, vert.AltColour)
	}
	return nil
}

// shiftVertex is one record of the spectral vertex table.
type shiftVertex struct {
	base   math.Vec3
	offset math.Vec3
}

// readSpectralVertices applies the shift records that move single vertices
// in the spectral variant. Each record is a base position, a vertex index
// and an offset; an index of 0xFFFF ends the table.
func (d *unitDecoder) readSpectralVertices() error {
	start := d.hdr.SpectralVertexStart

	// The first index sits right after the first base position.
	first, err := d.r.U16At(start + 6)
	if err != nil {
		return d.unterminated(start, err)
	}
	if first == spectralSentinel {
		d.log.Debug("empty spectral vertex table", zap.Uint32("offset", start))
		return nil
	}

	if err := d.r.Seek(start); err != nil {
		return d.unterminated(start, err)
	}

	shifts := 0
	for {
		if shifts >= maxSpectralShifts {
			return fmt.Errorf("%w: no 0x%x after %d records at 0x%x", ErrUnterminatedSpectral, spectralSentinel, shifts, start)
		}

		base, err := d.readShortVec()
		if err != nil {
			return d.unterminated(start, err)
		}
		index, err := d.r.U16()
		if err != nil {
			return d.unterminated(start, err)
		}
		if index == spectralSentinel {
			break
		}
		offset, err := d.readShortVec()
		if err != nil {
			return d.unterminated(start, err)
		}

		if int(index) >= len(d.model.Vertices) {
			return fmt.Errorf("%w: spectral vertex %d at 0x%x exceeds vertex count %d",
				ErrMalformedOffset, index, d.r.Pos()-8, len(d.model.Vertices))
		}

		shift := shiftVertex{base: base, offset: offset}
		d.model.Vertices[index].AltPhysPosition = shift.base.Add(shift.offset)
		shifts++
	}

	d.log.Debug("spectral vertices", zap.Uint32("offset", start), zap.Int("shifts", shifts))
	return nil
}

func (d *unitDecoder) readShortVec() (math.Vec3, error) {
	var xyz [3]int16
	for i := range xyz {
		c, err := d.r.I16()
		if err != nil {
			return math.Vec3{}, err
		}
		xyz[i] = c
	}
	return math.Vec3FromInt16(xyz[0], xyz[1], xyz[2]), nil
}

func (d *unitDecoder) unterminated(start uint32, err error) error {
	if errors.Is(err, ErrTruncated) {
		return fmt.Errorf("%w at 0x%x: %w", ErrUnterminatedSpectral, start, err)
	}
	return err
}
