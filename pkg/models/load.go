package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load reads a mesh, choosing the decoder from the file extension.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		return LoadGLB(path)
	case ".stl":
		return LoadSTL(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Formats lists the extensions Load understands.
func Formats() []string {
	return []string{".glb", ".gltf", ".obj", ".stl"}
}
