package formats

import "testing"

func TestFlipRedAndBlue(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0xFF112233, 0xFF332211},
		{0x00FF0000, 0x000000FF},
		{0x8000FF00, 0x8000FF00},
		{0xFFFFFFFF, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		if got := FlipRedAndBlue(tt.in); got != tt.want {
			t.Errorf("FlipRedAndBlue(0x%08x) = 0x%08x, want 0x%08x", tt.in, got, tt.want)
		}
		if got := FlipRedAndBlue(FlipRedAndBlue(tt.in)); got != tt.in {
			t.Errorf("double flip of 0x%08x = 0x%08x", tt.in, got)
		}
	}
}

func TestUnpackSpectralColour_AllValues(t *testing.T) {
	for _, prev := range []uint32{0xFF123456, 0x00ABCDEF, 0x7F000000} {
		for c := 0; c <= 0xFFFF; c++ {
			got := UnpackSpectralColour(uint16(c), prev)

			red := (uint32(c) >> 0 & 0x1F) << 19
			green := (uint32(c) >> 5 & 0x1F) << 11
			blue := (uint32(c) >> 10 & 0x1F) << 3
			want := prev&0xFF000000 | red | green | blue

			if got != want {
				t.Fatalf("UnpackSpectralColour(0x%04x, 0x%08x) = 0x%08x, want 0x%08x", c, prev, got, want)
			}
		}
	}
}

func TestUnpackSpectralColour_IgnoresTopBit(t *testing.T) {
	if a, b := UnpackSpectralColour(0x8001, 0xFF000000), UnpackSpectralColour(0x0001, 0xFF000000); a != b {
		t.Errorf("bit 15 changed the result: 0x%08x vs 0x%08x", a, b)
	}
}
