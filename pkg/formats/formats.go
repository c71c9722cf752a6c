// Package formats decodes Gex unit models: vertex and polygon tables, the
// spectral overlay, deduplicated materials and the BSP walk that splits the
// visible polygons into render meshes.
package formats
