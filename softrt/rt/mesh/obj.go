package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrMalformedOBJ = errors.New("malformed obj")

// LoadOBJFile reads a Wavefront OBJ file from disk.
func LoadOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer f.Close()

	m, err := LoadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadOBJ parses v, vn and f records. Polygons are fan-triangulated. When
// every face corner references a normal with the same index as its position
// those normals are used; otherwise normals are recomputed from the faces.
func LoadOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		indices   []uint32
		// normalRef[i] is the vn index bound to position i, -1 if none.
		normalRef   []int
		normalsSane = true
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, lineNo, err)
			}
			positions = append(positions, v)
			normalRef = append(normalRef, -1)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, lineNo, err)
			}
			normals = append(normals, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrMalformedOBJ, lineNo)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				vi, ni, err := parseCorner(tok, len(positions), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, uint32(vi))
				if ni < 0 {
					normalsSane = false
				} else if normalRef[vi] == -1 {
					normalRef[vi] = ni
				} else if normalRef[vi] != ni {
					normalsSane = false
				}
			}
			for i := 1; i+1 < len(corners); i++ {
				indices = append(indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj: %w", err)
	}
	if len(positions) == 0 {
		return nil, ErrEmptyMesh
	}

	var vertexNormals []mgl32.Vec3
	if normalsSane && len(normals) > 0 {
		vertexNormals = make([]mgl32.Vec3, len(positions))
		for i, ref := range normalRef {
			if ref < 0 {
				normalsSane = false
				break
			}
			vertexNormals[i] = normals[ref].Normalize()
		}
	}
	if !normalsSane || vertexNormals == nil {
		vertexNormals = computeNormals(positions, indices)
	}
	return New(positions, vertexNormals, indices)
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseCorner decodes "v", "v/vt", "v/vt/vn" or "v//vn" into zero-based
// position and normal indices. Negative OBJ indices count back from the
// current end of the list. ni is -1 when the corner has no normal.
func parseCorner(tok string, nPos, nNorm int) (vi, ni int, err error) {
	parts := strings.Split(tok, "/")
	vi, err = resolveIndex(parts[0], nPos)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex %q: %w", tok, err)
	}
	ni = -1
	if len(parts) == 3 && parts[2] != "" {
		ni, err = resolveIndex(parts[2], nNorm)
		if err != nil {
			return 0, 0, fmt.Errorf("normal %q: %w", tok, err)
		}
	}
	return vi, ni, nil
}

func resolveIndex(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedOBJ, err)
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx = n + idx
	default:
		return 0, fmt.Errorf("%w: index 0 is invalid", ErrIndexOutOfRange)
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: %d outside [0, %d)", ErrIndexOutOfRange, idx, n)
	}
	return idx, nil
}
