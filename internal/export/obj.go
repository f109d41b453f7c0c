// Package export writes generated tile geometry as Wavefront OBJ.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/blockterrain/internal/blocks"
)

// Mesh is one named primitive to export.
type Mesh struct {
	Name      string
	Primitive blocks.Primitive
}

// Stats summarizes what was written.
type Stats struct {
	Objects   int
	Vertices  int
	Triangles int
}

// WriteOBJ writes meshes to w. Positions are written relative to origin and
// carry the instance color as a vertex color extension.
func WriteOBJ(w io.Writer, meshes []Mesh, origin mgl64.Vec3) (Stats, error) {
	bw := bufio.NewWriter(w)
	var st Stats

	fmt.Fprintf(bw, "# blockterrain export\n")
	fmt.Fprintf(bw, "# origin %.3f %.3f %.3f\n", origin[0], origin[1], origin[2])

	next := 1 // OBJ indices are 1-based and global
	for _, m := range meshes {
		fmt.Fprintf(bw, "o %s\n", m.Name)
		if m.Primitive.Material.Texture != "" {
			fmt.Fprintf(bw, "usemtl %s\n", filepath.Base(m.Primitive.Material.Texture))
		}
		st.Objects++

		for _, inst := range m.Primitive.Instances {
			col := inst.Color
			for _, v := range inst.Geometry.Vertices {
				p := v.Position.Sub(origin)
				fmt.Fprintf(bw, "v %.4f %.4f %.4f %.4f %.4f %.4f\n", p[0], p[1], p[2], col[0], col[1], col[2])
			}
			for _, v := range inst.Geometry.Vertices {
				fmt.Fprintf(bw, "vt %.6f %.6f\n", v.ST[0], v.ST[1])
			}
			for _, v := range inst.Geometry.Vertices {
				fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", v.Normal[0], v.Normal[1], v.Normal[2])
			}

			idx := inst.Geometry.Indices
			for i := 0; i+2 < len(idx); i += 3 {
				a, b, c := next+int(idx[i]), next+int(idx[i+1]), next+int(idx[i+2])
				fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
				st.Triangles++
			}
			next += len(inst.Geometry.Vertices)
			st.Vertices += len(inst.Geometry.Vertices)
		}
	}

	if err := bw.Flush(); err != nil {
		return st, fmt.Errorf("writing obj: %w", err)
	}
	return st, nil
}

// WriteOBJFile writes meshes to path, creating parent directories.
func WriteOBJFile(path string, meshes []Mesh, origin mgl64.Vec3) (Stats, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Stats{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, err
	}

	st, err := WriteOBJ(f, meshes, origin)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return st, err
}
