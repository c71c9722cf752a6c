package formats

// FlipRedAndBlue swaps the red and blue byte lanes of a packed 0xAARRGGBB colour.
func FlipRedAndBlue(c uint32) uint32 {
	red := (c >> 16) & 0xFF
	blue := c & 0xFF
	return (c & 0xFF00FF00) | (blue << 16) | red
}

// UnpackSpectralColour expands a 5-5-5 packed colour into 8-bit lanes,
// keeping the alpha byte of prev. Fields are stored low to high as
// red, green, blue.
func UnpackSpectralColour(packed uint16, prev uint32) uint32 {
	c := uint32(packed)
	alpha := prev & 0xFF000000
	red := ((c >> 0) & 0x1F) << 19
	green := ((c >> 5) & 0x1F) << 11
	blue := ((c >> 10) & 0x1F) << 3
	return alpha | red | green | blue
}
