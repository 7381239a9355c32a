package assets

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gekko3d/prism/render/core"
)

// MeshData is one object or group of an OBJ file, flattened to a single index buffer.
type MeshData struct {
	Name         string
	Vertices     []core.ModelVertex
	Indices      []uint32
	MaterialName string
	// Material indexes ModelAsset.Materials, or -1.
	Material int
}

type ObjFile struct {
	Meshes       []MeshData
	MaterialLibs []string
	// Warnings lists statements that were skipped.
	Warnings []string
}

type vertexKey struct {
	v, t, n int
}

type objDecoder struct {
	line int

	positions [][3]float32
	uvs       [][2]float32
	normals   [][3]float32

	file    ObjFile
	current *MeshData
	lookup  map[vertexKey]uint32

	nextName string
	material string
}

const noIndex = -1

// ParseOBJ decodes a Wavefront OBJ stream. Faces with more than three corners are
// split as triangle fans. Texture V is flipped for WebGPU's top-left origin.
func ParseOBJ(r io.Reader) (*ObjFile, error) {
	dec := &objDecoder{}
	if err := scanLines(r, &dec.line, dec.parseLine); err != nil {
		return nil, err
	}

	meshes := dec.file.Meshes[:0]
	for _, m := range dec.file.Meshes {
		if len(m.Indices) > 0 {
			meshes = append(meshes, m)
		}
	}
	dec.file.Meshes = meshes
	return &dec.file, nil
}

func scanLines(r io.Reader, line *int, parse func(fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	*line = 0
	for sc.Scan() {
		*line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := parse(fields); err != nil {
			return fmt.Errorf("line %d: %w", *line, err)
		}
	}
	return sc.Err()
}

func (dec *objDecoder) parseLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, [2]float32{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return dec.parseFace(fields[1:])
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		dec.nextName = name
		dec.current = nil
	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("%w: usemtl without a name", ErrMalformed)
		}
		dec.material = fields[1]
		// a material change starts a new mesh, since a mesh draws with one material
		if dec.current != nil && dec.current.MaterialName != dec.material {
			dec.nextName = dec.current.Name
			dec.current = nil
		}
	case "mtllib":
		dec.file.MaterialLibs = append(dec.file.MaterialLibs, fields[1:]...)
	case "s", "l", "p":
	default:
		dec.file.Warnings = append(dec.file.Warnings, fmt.Sprintf("line %d: %s not supported", dec.line, fields[0]))
	}
	return nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrMalformed, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (dec *objDecoder) mesh() *MeshData {
	if dec.current == nil {
		name := dec.nextName
		if name == "" {
			name = fmt.Sprintf("mesh%d", len(dec.file.Meshes))
		}
		dec.file.Meshes = append(dec.file.Meshes, MeshData{Name: name, MaterialName: dec.material, Material: -1})
		dec.current = &dec.file.Meshes[len(dec.file.Meshes)-1]
		dec.lookup = make(map[vertexKey]uint32)
	}
	return dec.current
}

// parseFace handles f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: face with %d vertices", ErrMalformed, len(fields))
	}

	keys := make([]vertexKey, len(fields))
	for i, f := range fields {
		k, err := dec.parseCorner(f)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	// mesh() may grow dec.file.Meshes, so resolve it only after the face parsed cleanly
	m := dec.mesh()
	for i := 1; i+1 < len(keys); i++ {
		m.Indices = append(m.Indices, dec.index(m, keys[0]), dec.index(m, keys[i]), dec.index(m, keys[i+1]))
	}
	return nil
}

func (dec *objDecoder) parseCorner(f string) (vertexKey, error) {
	parts := strings.Split(f, "/")
	if len(parts) > 3 || parts[0] == "" {
		return vertexKey{}, fmt.Errorf("%w: bad face vertex %q", ErrMalformed, f)
	}

	var k vertexKey
	var err error
	if k.v, err = resolveIndex(parts[0], len(dec.positions)); err != nil {
		return k, err
	}
	k.t, k.n = noIndex, noIndex
	if len(parts) > 1 && parts[1] != "" {
		if k.t, err = resolveIndex(parts[1], len(dec.uvs)); err != nil {
			return k, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if k.n, err = resolveIndex(parts[2], len(dec.normals)); err != nil {
			return k, err
		}
	}
	return k, nil
}

// resolveIndex turns a 1-based or negative (relative to the end) OBJ index into a
// 0-based one, checked against the count parsed so far.
func resolveIndex(s string, count int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformed, s)
	}
	var idx int
	switch {
	case v > 0:
		idx = v - 1
	case v < 0:
		idx = count + v
	default:
		return 0, fmt.Errorf("%w: index 0", ErrMalformed)
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: index %d out of range (%d defined)", ErrMalformed, v, count)
	}
	return idx, nil
}

func (dec *objDecoder) index(m *MeshData, k vertexKey) uint32 {
	if i, ok := dec.lookup[k]; ok {
		return i
	}
	var vert core.ModelVertex
	vert.Position = dec.positions[k.v]
	if k.t != noIndex {
		uv := dec.uvs[k.t]
		vert.TexCoords = [2]float32{uv[0], 1 - uv[1]}
	}
	if k.n != noIndex {
		vert.Normal = dec.normals[k.n]
	}
	i := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, vert)
	dec.lookup[k] = i
	return i
}

type Material struct {
	Name           string
	Ambient        [3]float32
	Diffuse        [3]float32
	DiffuseTexture string
	NormalTexture  string
}

// ParseMTL decodes the materials of a Wavefront MTL stream. Unknown statements are ignored.
func ParseMTL(r io.Reader) ([]Material, error) {
	var (
		line int
		mats []Material
	)
	cur := func() (*Material, error) {
		if len(mats) == 0 {
			return nil, fmt.Errorf("%w: statement before newmtl", ErrMalformed)
		}
		return &mats[len(mats)-1], nil
	}

	err := scanLines(r, &line, func(fields []string) error {
		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return fmt.Errorf("%w: newmtl without a name", ErrMalformed)
			}
			mats = append(mats, Material{Name: fields[1], Diffuse: [3]float32{1, 1, 1}})
		case "Kd", "Ka":
			m, err := cur()
			if err != nil {
				return err
			}
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return err
			}
			if fields[0] == "Kd" {
				m.Diffuse = [3]float32{v[0], v[1], v[2]}
			} else {
				m.Ambient = [3]float32{v[0], v[1], v[2]}
			}
		case "map_Kd", "map_Bump", "map_bump", "bump", "norm":
			m, err := cur()
			if err != nil {
				return err
			}
			if len(fields) < 2 {
				return fmt.Errorf("%w: %s without a file", ErrMalformed, fields[0])
			}
			// options such as -bm 1.0 come before the file name
			file := fields[len(fields)-1]
			if fields[0] == "map_Kd" {
				m.DiffuseTexture = file
			} else {
				m.NormalTexture = file
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mats, nil
}
