package formats

// Material describes how a polygon is shaded.
type Material struct {
	TextureUsed bool
	Colour      uint32 // ARGB tint, or the fallback colour when untextured
	Visible     bool   // Reached by at least one BSP leaf
	TexturePage uint16
	Clut        uint16
}

// Equal reports whether two materials have the same field values.
// It says nothing about whether they are the same instance.
func (m *Material) Equal(other *Material) bool {
	return *m == *other
}

// MaterialList is an insertion-ordered registry that hands back one shared
// instance per distinct material value.
type MaterialList struct {
	byValue map[Material]*Material
	ordered []*Material
}

// NewMaterialList creates a registry seeded with first.
func NewMaterialList(first *Material) *MaterialList {
	l := &MaterialList{byValue: make(map[Material]*Material)}
	l.Add(first)
	return l
}

// Add returns the registered material equal to m. If none exists, m itself
// is registered and returned.
func (l *MaterialList) Add(m *Material) *Material {
	if existing, ok := l.byValue[*m]; ok {
		return existing
	}
	l.byValue[*m] = m
	l.ordered = append(l.ordered, m)
	return m
}

// Len returns the number of distinct materials.
func (l *MaterialList) Len() int {
	return len(l.ordered)
}

// Materials returns the registered materials in insertion order.
func (l *MaterialList) Materials() []*Material {
	return l.ordered
}
