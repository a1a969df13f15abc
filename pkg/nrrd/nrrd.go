// Package nrrd reads and writes single-file NRRD (Nearly Raw Raster Data)
// volumes, with the payload following the header in the same file.
//
// Only the subset needed for dense uint8, uint16 and float rasters is
// supported: raw or gzip encoding, little endian payloads, and ordered
// key/value metadata.
package nrrd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Encoding is the payload encoding of a NRRD file
type Encoding string

const (
	Raw  Encoding = "raw"
	Gzip Encoding = "gzip"
)

// ParseEncoding validates an encoding name
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(s)) {
	case Raw:
		return Raw, nil
	case Gzip, "gz":
		return Gzip, nil
	default:
		return "", fmt.Errorf("unsupported nrrd encoding %q", s)
	}
}

const magic = "NRRD0004"

var errUnsupportedType = errors.New("unsupported nrrd element type")

// KeyValue is a free-form metadata pair, written as "key:=value"
type KeyValue struct {
	Key   string
	Value string
}

// Header describes a NRRD volume
type Header struct {
	Type      string
	Sizes     []int
	Encoding  Encoding
	KeyValues []KeyValue
}

// Value returns the metadata value stored under key
func (h *Header) Value(key string) (string, bool) {
	for _, kv := range h.KeyValues {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Options control how a volume is written
type Options struct {
	Encoding  Encoding
	KeyValues []KeyValue
}

// typeName maps a payload slice to its NRRD type and element size
func typeName(data interface{}) (string, int, int, error) {
	switch d := data.(type) {
	case []uint8:
		return "uint8", 1, len(d), nil
	case []uint16:
		return "uint16", 2, len(d), nil
	case []float32:
		return "float", 4, len(d), nil
	default:
		return "", 0, 0, fmt.Errorf("%w: %T", errUnsupportedType, data)
	}
}

// Write encodes data as a NRRD volume. sizes lists the axis extents with the
// fastest varying axis first, the order data is laid out in.
func Write(w io.Writer, data interface{}, sizes []int, opts Options) error {
	typ, elemSize, n, err := typeName(data)
	if err != nil {
		return err
	}

	total := 1
	for _, s := range sizes {
		total *= s
	}
	if total != n {
		return fmt.Errorf("sizes %v hold %d elements but data has %d", sizes, total, n)
	}

	enc := opts.Encoding
	if enc == "" {
		enc = Gzip
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, magic)
	fmt.Fprintln(bw, "# Complete NRRD file format specification at:")
	fmt.Fprintln(bw, "# http://teem.sourceforge.net/nrrd/format.html")
	fmt.Fprintf(bw, "type: %s\n", typ)
	fmt.Fprintf(bw, "dimension: %d\n", len(sizes))
	fmt.Fprintf(bw, "sizes: %s\n", joinInts(sizes))
	if elemSize > 1 {
		fmt.Fprintln(bw, "endian: little")
	}
	fmt.Fprintf(bw, "encoding: %s\n", enc)
	for _, kv := range opts.KeyValues {
		if strings.ContainsAny(kv.Key+kv.Value, "\n") || strings.Contains(kv.Key, ":=") {
			return fmt.Errorf("invalid nrrd key/value %q", kv.Key)
		}
		fmt.Fprintf(bw, "%s:=%s\n", kv.Key, kv.Value)
	}
	fmt.Fprintln(bw)

	switch enc {
	case Raw:
		if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
			return fmt.Errorf("failed to write nrrd payload: %w", err)
		}
	case Gzip:
		gz := gzip.NewWriter(bw)
		if err := binary.Write(gz, binary.LittleEndian, data); err != nil {
			return fmt.Errorf("failed to compress nrrd payload: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to compress nrrd payload: %w", err)
		}
	default:
		return fmt.Errorf("unsupported nrrd encoding %q", enc)
	}
	return bw.Flush()
}

// WriteFile writes a NRRD volume to path, replacing any existing file
func WriteFile(path string, data interface{}, sizes []int, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, data, sizes, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a NRRD volume written by Write. The payload is returned as
// []uint8, []uint16 or []float32 depending on the header type.
func Read(r io.Reader) (*Header, interface{}, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read nrrd magic: %w", err)
	}
	if !strings.HasPrefix(line, "NRRD000") {
		return nil, nil, fmt.Errorf("not a nrrd file")
	}

	h := &Header{Encoding: Raw}
	endian := "little"
	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read nrrd header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":="); ok {
			h.KeyValues = append(h.KeyValues, KeyValue{Key: k, Value: v})
			continue
		}
		field, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, nil, fmt.Errorf("malformed nrrd header line %q", line)
		}
		switch field {
		case "type":
			h.Type = value
		case "sizes":
			for _, s := range strings.Fields(value) {
				n, err := strconv.Atoi(s)
				if err != nil {
					return nil, nil, fmt.Errorf("bad nrrd size %q: %w", s, err)
				}
				h.Sizes = append(h.Sizes, n)
			}
		case "encoding":
			enc, err := ParseEncoding(value)
			if err != nil {
				return nil, nil, err
			}
			h.Encoding = enc
		case "endian":
			endian = value
		}
	}

	total := 1
	for _, s := range h.Sizes {
		total *= s
	}

	var data interface{}
	switch h.Type {
	case "uint8", "uchar", "unsigned char":
		data = make([]uint8, total)
	case "uint16", "ushort", "unsigned short":
		data = make([]uint16, total)
	case "float":
		data = make([]float32, total)
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnsupportedType, h.Type)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if endian == "big" {
		order = binary.BigEndian
	}

	var payload io.Reader = br
	if h.Encoding == Gzip {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip payload: %w", err)
		}
		defer gz.Close()
		payload = gz
	}
	if err := binary.Read(payload, order, data); err != nil {
		return nil, nil, fmt.Errorf("failed to read nrrd payload: %w", err)
	}
	return h, data, nil
}

// ReadFile reads a NRRD volume from path
func ReadFile(path string) (*Header, interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Read(f)
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}
