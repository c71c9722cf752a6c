package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/gex-unit/pkg/formats"
)

// report is the dump summary of a decoded model.
type report struct {
	Name            string         `yaml:"name"`
	Vertices        int            `yaml:"vertices"`
	Polygons        int            `yaml:"polygons"`
	VisiblePolygons int            `yaml:"visible_polygons"`
	Groups          int            `yaml:"groups"`
	Materials       []materialInfo `yaml:"materials"`
	Meshes          []meshInfo     `yaml:"meshes"`
	Roots           []rootInfo     `yaml:"roots"`
	BoundsMin       []float32      `yaml:"bounds_min,flow,omitempty"`
	BoundsMax       []float32      `yaml:"bounds_max,flow,omitempty"`
}

type materialInfo struct {
	Textured    bool   `yaml:"textured"`
	Colour      string `yaml:"colour"`
	Visible     bool   `yaml:"visible"`
	TexturePage uint16 `yaml:"texture_page"`
	Clut        uint16 `yaml:"clut"`
}

type meshInfo struct {
	Name      string `yaml:"name"`
	Polygons  int    `yaml:"polygons"`
	Vertices  int    `yaml:"vertices"`
	Materials int    `yaml:"materials"`
}

type rootInfo struct {
	ID         uint16 `yaml:"id"`
	DrawTester bool   `yaml:"draw_tester"`
	HasTree    bool   `yaml:"has_tree"`
}

func buildReport(m *formats.UnitModel) report {
	r := report{
		Name:            m.Name,
		Vertices:        len(m.Vertices),
		Polygons:        len(m.Polygons),
		VisiblePolygons: m.VisiblePolygonCount(),
		Groups:          m.GroupCount(),
	}

	for _, mat := range m.Materials {
		r.Materials = append(r.Materials, materialInfo{
			Textured:    mat.TextureUsed,
			Colour:      fmt.Sprintf("0x%08x", mat.Colour),
			Visible:     mat.Visible,
			TexturePage: mat.TexturePage,
			Clut:        mat.Clut,
		})
	}

	for _, mesh := range m.RenderMeshes() {
		distinct := make(map[*formats.Material]struct{})
		for _, p := range mesh.Polygons {
			distinct[p.Material] = struct{}{}
		}
		r.Meshes = append(r.Meshes, meshInfo{
			Name:      mesh.Name,
			Polygons:  mesh.PolygonCount,
			Vertices:  len(mesh.Vertices),
			Materials: len(distinct),
		})
	}

	for _, root := range m.Roots {
		r.Roots = append(r.Roots, rootInfo{
			ID:         root.ID,
			DrawTester: root.DrawTester,
			HasTree:    root.Tree >= 0,
		})
	}

	if b := m.Bounds(); !b.IsEmpty() {
		r.BoundsMin = []float32{b.Min.X, b.Min.Y, b.Min.Z}
		r.BoundsMax = []float32{b.Max.X, b.Max.Y, b.Max.Z}
	}
	return r
}

func writeReport(w io.Writer, r report, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeText(w io.Writer, r report) error {
	p := func(format string, a ...any) {
		fmt.Fprintf(w, format, a...)
	}

	p("Model:     %s\n", r.Name)
	p("Vertices:  %d\n", r.Vertices)
	p("Polygons:  %d (%d visible)\n", r.Polygons, r.VisiblePolygons)
	p("Groups:    %d\n", r.Groups)
	p("Bounds:    %v .. %v\n", r.BoundsMin, r.BoundsMax)
	p("\nMeshes:\n")
	for _, m := range r.Meshes {
		p("  %-20s %6d polys %6d verts %4d materials\n", m.Name, m.Polygons, m.Vertices, m.Materials)
	}
	p("\nMaterials:\n")
	for i, m := range r.Materials {
		kind := "flat"
		if m.Textured {
			kind = fmt.Sprintf("tpage=0x%04x clut=0x%04x", m.TexturePage, m.Clut)
		}
		p("  %3d %s %s visible=%v\n", i, m.Colour, kind, m.Visible)
	}
	_, err := fmt.Fprintln(w)
	return err
}
