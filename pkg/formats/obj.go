package formats

import (
	"bufio"
	"fmt"
	"io"
)

// OBJMesh is one named object in a Wavefront OBJ export.
// Positions, Normals and UVs are parallel; Indices is a triangle list.
type OBJMesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

// WriteOBJ writes meshes as Wavefront OBJ objects sharing one index space.
func WriteOBJ(w io.Writer, meshes []OBJMesh) error {
	bw := bufio.NewWriter(w)
	base := 1 // OBJ indices are 1-based and global

	for mi, m := range meshes {
		if len(m.Normals) != len(m.Positions) || len(m.UVs) != len(m.Positions) {
			return fmt.Errorf("mesh %d: attribute count mismatch (%d positions, %d normals, %d uvs)",
				mi, len(m.Positions), len(m.Normals), len(m.UVs))
		}
		if len(m.Indices)%3 != 0 {
			return fmt.Errorf("mesh %d: index count %d is not a multiple of 3", mi, len(m.Indices))
		}

		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh%d", mi)
		}
		fmt.Fprintf(bw, "o %s\n", name)

		for _, p := range m.Positions {
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		for _, uv := range m.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
		}
		for i := 0; i < len(m.Indices); i += 3 {
			a := int(m.Indices[i]) + base
			b := int(m.Indices[i+1]) + base
			c := int(m.Indices[i+2]) + base
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		base += len(m.Positions)
	}

	return bw.Flush()
}
