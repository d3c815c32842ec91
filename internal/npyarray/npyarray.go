// Package npyarray implements just enough of the NumPy .npy/.npz container
// format to save and load a Network: named float32 arrays (one weight and
// one bias per layer) plus a single fixed-width ASCII byte-string array
// naming each layer's activation, bundled together in a zip archive. There
// is no general-purpose NPY library in the example corpus this engine was
// grounded on, and the format itself is small and fully pinned down by
// what Network.Save/Load need, so it is implemented directly on
// archive/zip and encoding/binary rather than reaching for a dependency
// that doesn't exist.
package npyarray

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

func uint32FromFloat32(v float32) uint32 { return math.Float32bits(v) }

func float32FromUint32(v uint32) float32 { return math.Float32frombits(v) }

const (
	magic        = "\x93NUMPY"
	majorVersion = 1
	minorVersion = 0
	headerAlign  = 64
)

// Array is one named typed array within a Bundle.
type Array struct {
	Name  string
	Shape []int
	// Descr is the NumPy type descriptor: "<f4" for little-endian float32,
	// or "|S<n>" for a fixed-width n-byte ASCII string array.
	Descr string
	// Data holds the raw little-endian bytes of the array, row-major
	// (C order).
	Data []byte
}

// Bundle is an ordered collection of named arrays, saved/loaded together
// as a zip archive the way numpy.savez does.
type Bundle struct {
	Arrays []Array
}

// AddFloat32 appends a float32 array with the given shape. len(data) must
// equal the product of shape.
func (b *Bundle) AddFloat32(name string, shape []int, data []float32) error {
	if want := product(shape); want != len(data) {
		return fmt.Errorf("npyarray: %s: shape %v wants %d elements, got %d", name, shape, want, len(data))
	}
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32FromFloat32(v))
	}
	b.Arrays = append(b.Arrays, Array{Name: name, Shape: shape, Descr: "<f4", Data: buf})
	return nil
}

// AddFixedStrings appends a fixed-width ASCII string array: one row per
// value, each row NUL-padded to the length of the longest value.
func (b *Bundle) AddFixedStrings(name string, values []string) error {
	elemSize := 0
	for _, v := range values {
		if len(v) > elemSize {
			elemSize = len(v)
		}
	}
	if elemSize == 0 {
		elemSize = 1
	}
	buf := make([]byte, elemSize*len(values))
	for i, v := range values {
		copy(buf[i*elemSize:], v)
	}
	b.Arrays = append(b.Arrays, Array{
		Name:  name,
		Shape: []int{len(values)},
		Descr: fmt.Sprintf("|S%d", elemSize),
		Data:  buf,
	})
	return nil
}

// Float32 returns a named array's data interpreted as float32, along with
// its shape.
func (b *Bundle) Float32(name string) ([]float32, []int, error) {
	a, err := b.find(name)
	if err != nil {
		return nil, nil, err
	}
	if a.Descr != "<f4" {
		return nil, nil, fmt.Errorf("npyarray: %s has dtype %q, want <f4", name, a.Descr)
	}
	out := make([]float32, len(a.Data)/4)
	for i := range out {
		out[i] = float32FromUint32(binary.LittleEndian.Uint32(a.Data[i*4:]))
	}
	return out, a.Shape, nil
}

// FixedStrings returns a named fixed-width string array's values, each
// trimmed of trailing NUL padding.
func (b *Bundle) FixedStrings(name string) ([]string, error) {
	a, err := b.find(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(a.Descr, "|S") {
		return nil, fmt.Errorf("npyarray: %s has dtype %q, want |S<n>", name, a.Descr)
	}
	elemSize, err := strconv.Atoi(strings.TrimPrefix(a.Descr, "|S"))
	if err != nil || elemSize <= 0 {
		return nil, fmt.Errorf("npyarray: %s has invalid string dtype %q", name, a.Descr)
	}
	n := len(a.Data) / elemSize
	out := make([]string, n)
	for i := 0; i < n; i++ {
		row := a.Data[i*elemSize : (i+1)*elemSize]
		out[i] = string(bytes.TrimRight(row, "\x00"))
	}
	return out, nil
}

func (b *Bundle) find(name string) (Array, error) {
	for _, a := range b.Arrays {
		if a.Name == name {
			return a, nil
		}
	}
	return Array{}, fmt.Errorf("npyarray: no array named %q", name)
}

// Save writes the bundle to path as a zip archive of "<name>.npy" entries.
func (b *Bundle) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("npyarray: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, a := range b.Arrays {
		w, err := zw.Create(a.Name + ".npy")
		if err != nil {
			return fmt.Errorf("npyarray: %w", err)
		}
		if err := writeNPY(w, a); err != nil {
			return fmt.Errorf("npyarray: %w", err)
		}
	}
	return zw.Close()
}

// Load reads a zip archive of "<name>.npy" entries back into a Bundle.
func Load(path string) (*Bundle, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("npyarray: %w", err)
	}
	defer zr.Close()

	b := &Bundle{}
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, ".npy")
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("npyarray: %w", err)
		}
		a, err := readNPY(rc, name)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("npyarray: %s: %w", name, err)
		}
		b.Arrays = append(b.Arrays, a)
	}
	return b, nil
}

func writeNPY(w io.Writer, a Array) error {
	shapeStr := make([]string, len(a.Shape))
	for i, s := range a.Shape {
		shapeStr[i] = strconv.Itoa(s)
	}
	shapeTuple := strings.Join(shapeStr, ", ")
	if len(a.Shape) == 1 {
		shapeTuple += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", a.Descr, shapeTuple)

	// Pad the header so that magic+version+headerlen+header+'\n' is a
	// multiple of headerAlign, matching numpy's own alignment.
	prefixLen := len(magic) + 2 + 2
	total := prefixLen + len(header) + 1
	pad := (headerAlign - total%headerAlign) % headerAlign
	header = header + strings.Repeat(" ", pad) + "\n"

	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if _, err := w.Write([]byte{majorVersion, minorVersion}); err != nil {
		return err
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(header)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}
	_, err := w.Write(a.Data)
	return err
}

func readNPY(r io.Reader, name string) (Array, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return Array{}, err
	}
	if len(buf) < 10 || string(buf[:6]) != magic {
		return Array{}, fmt.Errorf("not an npy file")
	}
	headerLen := int(binary.LittleEndian.Uint16(buf[8:10]))
	headerStart := 10
	header := string(buf[headerStart : headerStart+headerLen])
	data := buf[headerStart+headerLen:]

	descr, err := extractQuoted(header, "'descr':")
	if err != nil {
		return Array{}, err
	}
	fortran := strings.Contains(header, "'fortran_order': True")
	if fortran {
		return Array{}, fmt.Errorf("fortran-ordered arrays are not supported")
	}
	shape, err := extractShape(header)
	if err != nil {
		return Array{}, err
	}

	return Array{Name: name, Shape: shape, Descr: descr, Data: data}, nil
}

func extractQuoted(header, key string) (string, error) {
	idx := strings.Index(header, key)
	if idx < 0 {
		return "", fmt.Errorf("missing %s in header", key)
	}
	rest := header[idx+len(key):]
	start := strings.IndexByte(rest, '\'')
	if start < 0 {
		return "", fmt.Errorf("malformed %s in header", key)
	}
	rest = rest[start+1:]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return "", fmt.Errorf("malformed %s in header", key)
	}
	return rest[:end], nil
}

func extractShape(header string) ([]int, error) {
	idx := strings.Index(header, "'shape':")
	if idx < 0 {
		return nil, fmt.Errorf("missing 'shape' in header")
	}
	rest := header[idx:]
	start := strings.IndexByte(rest, '(')
	end := strings.IndexByte(rest, ')')
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("malformed shape tuple")
	}
	inner := strings.TrimSpace(rest[start+1 : end])
	if inner == "" {
		return []int{}, nil
	}
	parts := strings.Split(inner, ",")
	var shape []int
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("malformed shape element %q", p)
		}
		shape = append(shape, v)
	}
	return shape, nil
}

func product(shape []int) int {
	p := 1
	for _, s := range shape {
		p *= s
	}
	return p
}
