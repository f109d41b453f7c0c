package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/blockterrain/internal/blocks"
)

func quad() blocks.Instance {
	return blocks.Instance{
		Geometry: blocks.Geometry{
			Vertices: []blocks.Vertex{
				{Position: mgl64.Vec3{10, 0, 0}, Normal: mgl64.Vec3{0, 0, 1}, ST: [2]float64{0, 0}},
				{Position: mgl64.Vec3{11, 0, 0}, Normal: mgl64.Vec3{0, 0, 1}, ST: [2]float64{1, 0}},
				{Position: mgl64.Vec3{10, 1, 0}, Normal: mgl64.Vec3{0, 0, 1}, ST: [2]float64{0, 1}},
				{Position: mgl64.Vec3{11, 1, 0}, Normal: mgl64.Vec3{0, 0, 1}, ST: [2]float64{1, 1}},
			},
			Indices: []uint32{0, 1, 2, 2, 1, 3},
		},
		Color: [4]float64{0.5, 0.25, 0, 1},
	}
}

func TestWriteOBJ(t *testing.T) {
	meshes := []Mesh{
		{Name: "L0/0/0/top", Primitive: blocks.Primitive{
			Instances: []blocks.Instance{quad(), quad()},
			Material:  blocks.Material{Texture: "textures/top-face.jpg"},
		}},
		{Name: "L0/0/0/walls", Primitive: blocks.Primitive{Instances: []blocks.Instance{quad()}}},
	}

	var buf bytes.Buffer
	st, err := WriteOBJ(&buf, meshes, mgl64.Vec3{10, 0, 0})
	if err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}
	if st.Objects != 2 || st.Vertices != 12 || st.Triangles != 6 {
		t.Errorf("Stats = %+v, want 2 objects, 12 vertices, 6 triangles", st)
	}

	out := buf.String()
	for _, want := range []string{
		"o L0/0/0/top\n",
		"usemtl top-face.jpg\n",
		"v 0.0000 0.0000 0.0000 0.5000 0.2500 0.0000\n",
		"f 1/1/1 2/2/2 3/3/3\n",
		// The second instance is offset by the first one's four vertices.
		"f 5/5/5 6/6/6 7/7/7\n",
		"f 11/11/11 10/10/10 12/12/12\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := strings.Count(out, "\nv "); n != 12 {
		t.Errorf("got %d vertex lines, want 12", n)
	}
}

func TestWriteOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tiles.obj")
	meshes := []Mesh{{Name: "walls", Primitive: blocks.Primitive{Instances: []blocks.Instance{quad()}}}}

	if _, err := WriteOBJFile(path, meshes, mgl64.Vec3{}); err != nil {
		t.Fatalf("WriteOBJFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), "# blockterrain export") {
		t.Errorf("unexpected file header: %q", string(data[:min(len(data), 40)]))
	}
}
