package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/wireplot/pkg/math3d"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50 // normal, three vertices, attribute count
)

// LoadSTL loads an ASCII or binary STL file. Vertices are welded so that
// neighbouring facets share edges.
func LoadSTL(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	defer f.Close()

	mesh, err := ReadSTL(f)
	if err != nil {
		return nil, fmt.Errorf("read stl %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ReadSTL decodes an STL stream, detecting the ASCII or binary variant.
func ReadSTL(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var mesh *Mesh
	if isBinarySTL(data) {
		mesh, err = readBinarySTL(data)
	} else {
		mesh, err = readASCIISTL(data)
	}
	if err != nil {
		return nil, err
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	mesh.Weld(WeldEpsilon)
	mesh.CalculateBounds()
	return mesh, nil
}

// isBinarySTL reports whether data is a binary STL. Some exporters write
// "solid" into binary headers, so the size implied by the facet count wins.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if int64(len(data)) == stlHeaderSize+4+int64(n)*stlRecordSize {
		return true
	}
	return !bytes.HasPrefix(bytes.TrimSpace(data[:stlHeaderSize]), []byte("solid"))
}

func readBinarySTL(data []byte) (*Mesh, error) {
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if len(body) < n*stlRecordSize {
		return nil, fmt.Errorf("truncated binary stl: %d facets declared, %d bytes of records", n, len(body))
	}

	mesh := NewMesh("stl")
	mesh.Vertices = make([]math3d.Vec3, 0, n*3)
	mesh.Faces = make([]Face, 0, n)

	vec := func(b []byte) math3d.Vec3 {
		return math3d.V3(
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
		)
	}

	for i := range n {
		rec := body[i*stlRecordSize:]
		// rec[0:12] is the facet normal; winding is authoritative
		mesh.AddTriangle(vec(rec[12:]), vec(rec[24:]), vec(rec[36:]))
	}
	return mesh, nil
}

func readASCIISTL(data []byte) (*Mesh, error) {
	mesh := NewMesh("stl")

	var (
		facet []math3d.Vec3
		line  int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "solid":
			mesh.Name = strings.Join(parts[1:], " ")
		case "vertex":
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
			facet = append(facet, math3d.V3(v[0], v[1], v[2]))
		case "endloop":
			// Facets with more than three vertices are fanned.
			for j := 2; j < len(facet); j++ {
				mesh.AddTriangle(facet[0], facet[j-1], facet[j])
			}
			facet = facet[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mesh, nil
}
