package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arlab/depthscene/engine/model"
)

// objLoaderBackend parses Wavefront OBJ files into packed meshes. Only the
// geometry statements (v, vn, vt, f) are interpreted; grouping, smoothing, and
// material statements are skipped. Faces with more than three corners are fan
// triangulated. Each distinct position/texcoord/normal triple becomes one
// output vertex, shared across every face corner that references it.
type objLoaderBackend struct{}

// newOBJLoaderBackend creates a new OBJ loader backend.
func newOBJLoaderBackend() *objLoaderBackend {
	return &objLoaderBackend{}
}

var _ loaderBackend = &objLoaderBackend{}

func (b *objLoaderBackend) Load(path string) (*model.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b.LoadBytes(name, data)
}

// cornerKey identifies one distinct position/texcoord/normal combination.
// Zero-valued components mean the attribute was not referenced.
type cornerKey struct {
	v, vt, vn int
}

func (b *objLoaderBackend) LoadBytes(name string, data []byte) (*model.Mesh, error) {
	// Raw attribute pools, in file order, 1-based per the OBJ index convention.
	var rawPositions, rawNormals []float32 // 3 floats per entry
	var rawTexCoords []float32            // 2 floats per entry

	// Packed output: one vertex per distinct corner triple.
	var positions, normals, texCoords []float32
	var indices []uint32
	corners := make(map[cornerKey]uint32)

	resolveCorner := func(key cornerKey) uint32 {
		if idx, ok := corners[key]; ok {
			return idx
		}
		idx := uint32(len(positions) / 3)
		corners[key] = idx

		p := (key.v - 1) * 3
		positions = append(positions, rawPositions[p], rawPositions[p+1], rawPositions[p+2])

		if key.vn > 0 {
			n := (key.vn - 1) * 3
			normals = append(normals, rawNormals[n], rawNormals[n+1], rawNormals[n+2])
		} else {
			// No normal referenced: default to +Y so lighting stays defined.
			normals = append(normals, 0, 1, 0)
		}

		if key.vt > 0 {
			t := (key.vt - 1) * 2
			texCoords = append(texCoords, rawTexCoords[t], rawTexCoords[t+1])
		} else {
			texCoords = append(texCoords, 0, 0)
		}
		return idx
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			floats, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: vertex: %w", name, lineNo, err)
			}
			rawPositions = append(rawPositions, floats...)

		case "vn":
			floats, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: normal: %w", name, lineNo, err)
			}
			rawNormals = append(rawNormals, floats...)

		case "vt":
			floats, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: texcoord: %w", name, lineNo, err)
			}
			rawTexCoords = append(rawTexCoords, floats...)

		case "f":
			refs := fields[1:]
			if len(refs) < 3 {
				return nil, fmt.Errorf("obj %q line %d: face has %d corners, need at least 3", name, lineNo, len(refs))
			}
			face := make([]uint32, len(refs))
			for i, ref := range refs {
				key, err := parseCorner(ref, len(rawPositions)/3, len(rawTexCoords)/2, len(rawNormals)/3)
				if err != nil {
					return nil, fmt.Errorf("obj %q line %d: %w", name, lineNo, err)
				}
				face[i] = resolveCorner(key)
			}
			// Fan triangulation preserves winding for convex polygons.
			for i := 1; i+1 < len(face); i++ {
				indices = append(indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj %q: %w", name, err)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("obj %q has no faces", name)
	}

	return model.NewMesh(name, positions, normals, texCoords, indices)
}

// parseFloats parses exactly want leading float fields; extra fields (e.g. a w
// component) are ignored.
func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("got %d components, want %d", len(fields), want)
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner parses one face corner reference of the form "v", "v/vt",
// "v//vn", or "v/vt/vn". Indices are 1-based; negative indices count back from
// the end of the respective attribute pool.
func parseCorner(ref string, positionCount, texCoordCount, normalCount int) (cornerKey, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return cornerKey{}, fmt.Errorf("malformed face corner %q", ref)
	}

	resolve := func(s string, count int, label string) (int, error) {
		if s == "" {
			return 0, nil
		}
		idx, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("face corner %q: %s index: %w", ref, label, err)
		}
		if idx < 0 {
			idx = count + idx + 1
		}
		if idx < 1 || idx > count {
			return 0, fmt.Errorf("face corner %q: %s index %s out of range [1, %d]", ref, label, s, count)
		}
		return idx, nil
	}

	var key cornerKey
	var err error
	if key.v, err = resolve(parts[0], positionCount, "vertex"); err != nil {
		return cornerKey{}, err
	}
	if key.v == 0 {
		return cornerKey{}, fmt.Errorf("face corner %q has no vertex index", ref)
	}
	if len(parts) > 1 {
		if key.vt, err = resolve(parts[1], texCoordCount, "texcoord"); err != nil {
			return cornerKey{}, err
		}
	}
	if len(parts) > 2 {
		if key.vn, err = resolve(parts[2], normalCount, "normal"); err != nil {
			return cornerKey{}, err
		}
	}
	return key, nil
}
