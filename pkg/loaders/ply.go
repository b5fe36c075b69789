package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/log"
	"github.com/df07/go-gi-shading/pkg/material"
)

var logger = log.New("loaders")

var (
	ErrUnsupportedFormat = errors.New("loaders: unsupported PLY format")
	ErrMalformedPLY      = errors.New("loaders: malformed PLY file")
)

// plyProperty is one property line of an element in the header
type plyProperty struct {
	Name      string
	Type      string
	IsList    bool
	CountType string // type of the list length, lists only
}

type plyElement struct {
	Name  string
	Count int
	Props []plyProperty
}

// index returns the position of the first property named one of names
func (e *plyElement) index(names ...string) int {
	for i, p := range e.Props {
		for _, n := range names {
			if p.Name == n {
				return i
			}
		}
	}
	return -1
}

type plyHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []plyElement
}

// LoadPLY reads a PLY file into a mesh whose faces all use mat. Vertex
// normals, when present, make the mesh smooth shaded.
func LoadPLY(filename, name string, mat *material.Material) (*geometry.Mesh, error) {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loaders: opening PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file, name, mat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Infof("loaded %s: %d vertices, %d faces in %v", filename, len(mesh.Vertices), len(mesh.Faces), time.Since(start))
	return mesh, nil
}

// ReadPLY decodes an ascii or binary PLY stream. Polygons with more than
// four corners are split into a triangle fan.
func ReadPLY(r io.Reader, name string, mat *material.Material) (*geometry.Mesh, error) {
	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	var values plyValues
	switch header.Format {
	case "ascii":
		sc := bufio.NewScanner(br)
		sc.Split(bufio.ScanWords)
		values = &asciiValues{scanner: sc}
	case "binary_little_endian":
		values = &binaryValues{reader: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{reader: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, header.Format)
	}

	mesh := geometry.NewMesh(name, mat)
	var polygons [][]int
	for i := range header.Elements {
		el := &header.Elements[i]
		switch el.Name {
		case "vertex":
			err = readVertices(values, el, mesh)
		case "face":
			polygons, err = readFaces(values, el)
		default:
			err = skipElement(values, el)
		}
		if err != nil {
			return nil, err
		}
	}

	for i, poly := range polygons {
		if len(poly) < 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrMalformedPLY, i, len(poly))
		}
		if len(poly) <= 4 {
			err = mesh.AddFace(poly...)
		} else {
			for k := 1; k+1 < len(poly) && err == nil; k++ {
				err = mesh.AddFace(poly[0], poly[k], poly[k+1])
			}
		}
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
	}
	return mesh, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	magic, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrMalformedPLY)
	}

	header := &plyHeader{}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header has no end_header", ErrMalformedPLY)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("%w: header has no format line", ErrMalformedPLY)
			}
			return header, nil
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: invalid format line", ErrMalformedPLY)
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: invalid element line", ErrMalformedPLY)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrMalformedPLY, parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before any element", ErrMalformedPLY)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &header.Elements[len(header.Elements)-1]
			el.Props = append(el.Props, prop)
		}
		// comment and obj_info lines are ignored
	}
}

// parsePLYProperty parses the fields after "property"
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("%w: invalid list property", ErrMalformedPLY)
		}
		return plyProperty{Name: parts[3], Type: parts[2], IsList: true, CountType: parts[1]}, nil
	}
	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("%w: invalid property", ErrMalformedPLY)
	}
	return plyProperty{Name: parts[1], Type: parts[0]}, nil
}

// getTypeSize returns the size in bytes of a PLY scalar type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// plyValues yields the scalars of the body one at a time
type plyValues interface {
	next(dataType string) (float64, error)
}

type asciiValues struct {
	scanner *bufio.Scanner
}

func (a *asciiValues) next(dataType string) (float64, error) {
	if getTypeSize(dataType) == 0 {
		return 0, fmt.Errorf("%w: unknown type %q", ErrMalformedPLY, dataType)
	}
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformedPLY)
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedPLY, err)
	}
	return v, nil
}

type binaryValues struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryValues) next(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("%w: unknown type %q", ErrMalformedPLY, dataType)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.reader, buf); err != nil {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformedPLY)
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

// readRecord reads one element instance. Scalars land in scalars and
// lists in lists, both indexed by property.
func readRecord(values plyValues, props []plyProperty, scalars []float64, lists [][]int) error {
	for i, p := range props {
		if !p.IsList {
			v, err := values.next(p.Type)
			if err != nil {
				return err
			}
			scalars[i] = v
			continue
		}
		n, err := values.next(p.CountType)
		if err != nil {
			return err
		}
		list := lists[i][:0]
		for k := 0; k < int(n); k++ {
			v, err := values.next(p.Type)
			if err != nil {
				return err
			}
			list = append(list, int(v))
		}
		lists[i] = list
	}
	return nil
}

func readVertices(values plyValues, el *plyElement, mesh *geometry.Mesh) error {
	x, y, z := el.index("x"), el.index("y"), el.index("z")
	if x < 0 || y < 0 || z < 0 {
		return fmt.Errorf("%w: vertex element needs x, y and z", ErrMalformedPLY)
	}
	nx, ny, nz := el.index("nx"), el.index("ny"), el.index("nz")
	hasNormals := nx >= 0 && ny >= 0 && nz >= 0
	u, v := el.index("u", "s", "texture_u"), el.index("v", "t", "texture_v")
	hasUVs := u >= 0 && v >= 0

	scalars := make([]float64, len(el.Props))
	lists := make([][]int, len(el.Props))
	for i := 0; i < el.Count; i++ {
		if err := readRecord(values, el.Props, scalars, lists); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
		mesh.AddVertex(core.NewVec3(scalars[x], scalars[y], scalars[z]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(scalars[nx], scalars[ny], scalars[nz]).Normalize())
		}
		if hasUVs {
			mesh.UVs = append(mesh.UVs, core.NewVec2(scalars[u], scalars[v]))
		}
	}
	mesh.Smooth = hasNormals
	return nil
}

func readFaces(values plyValues, el *plyElement) ([][]int, error) {
	idx := el.index("vertex_indices", "vertex_index")
	if idx < 0 || !el.Props[idx].IsList {
		return nil, fmt.Errorf("%w: face element needs a vertex_indices list", ErrMalformedPLY)
	}

	polygons := make([][]int, 0, el.Count)
	scalars := make([]float64, len(el.Props))
	lists := make([][]int, len(el.Props))
	for i := 0; i < el.Count; i++ {
		if err := readRecord(values, el.Props, scalars, lists); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		polygons = append(polygons, append([]int(nil), lists[idx]...))
	}
	return polygons, nil
}

// skipElement consumes the instances of an element the mesh has no use for
func skipElement(values plyValues, el *plyElement) error {
	scalars := make([]float64, len(el.Props))
	lists := make([][]int, len(el.Props))
	for i := 0; i < el.Count; i++ {
		if err := readRecord(values, el.Props, scalars, lists); err != nil {
			return fmt.Errorf("%s %d: %w", el.Name, i, err)
		}
	}
	return nil
}
