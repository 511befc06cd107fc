package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/wireplot/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file. Only positions and faces are read.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("read obj %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ReadOBJ decodes OBJ geometry from r. Polygons are fan triangulated and
// negative (relative) indices are resolved.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("obj")

	var (
		line int
		face []int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Fields(text)
		switch parts[0] {
		case "v":
			if len(parts) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", line)
			}
			var v [3]float64
			for j := range 3 {
				x, err := strconv.ParseFloat(parts[j+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				v[j] = x
			}
			mesh.Vertices = append(mesh.Vertices, math3d.V3(v[0], v[1], v[2]))

		case "f":
			face = face[:0]
			for _, ref := range parts[1:] {
				idx, err := objIndex(ref, len(mesh.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				face = append(face, idx)
			}

			// Fan triangulation
			for i := 2; i < len(face); i++ {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{face[0], face[i-1], face[i]}})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// objIndex resolves a face reference such as "7", "7/2/3" or "-1" to a
// zero-based vertex index.
func objIndex(ref string, count int) (int, error) {
	pos, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", ref, err)
	}

	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", n, count)
	}
}
