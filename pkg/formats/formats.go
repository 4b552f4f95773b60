// Package formats provides readers and writers for track file formats.
package formats

// Note: TRKG (curve and bifurcation records) is implemented in track.go
// Note: Wavefront OBJ export is implemented in obj.go
