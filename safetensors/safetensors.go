// Package safetensors reads the header of safetensors checkpoint files.
//
// A safetensors file starts with an 8-byte little-endian length followed by
// a JSON object mapping tensor names to descriptors. The payload bytes that
// follow the header are addressed by each descriptor's data_offsets and are
// not touched unless a caller asks for them.
package safetensors

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MetadataKey is the reserved header key whose value is free-form metadata
// rather than a tensor descriptor.
const MetadataKey = "__metadata__"

// ErrTooShort is returned when a file ends before the 8-byte header length.
var ErrTooShort = errors.New("file too short")

// Tensor describes a single tensor declared in the header. The payload
// bytes are not read.
type Tensor struct {
	Name     string
	DataType string
	Shape    Shape

	// Offsets holds the begin and end byte offsets of the tensor payload
	// relative to the end of the header, when the header declares them.
	Offsets []int64
}

// Elements returns the number of elements the tensor's shape spans. An
// empty shape is a scalar and counts as one element.
func (t Tensor) Elements() int64 {
	n := int64(1)
	for _, dim := range t.Shape {
		n *= dim
	}
	return n
}

type Shape []int64

func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// Header is a decoded safetensors header. Tensors preserves the order the
// descriptors appear in the JSON document.
type Header struct {
	Tensors  []Tensor
	Metadata json.RawMessage // raw __metadata__ value, nil when absent
}

// ReadHeaderSize reads the 8-byte little-endian header length from r.
func ReadHeaderSize(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTooShort
		}
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// DecodeHeader reads exactly n bytes from r and decodes them as a header.
// A short read is an error; partial header bytes are never handed to the
// JSON decoder.
func DecodeHeader(r io.Reader, n uint64) (*Header, error) {
	if n > math.MaxInt64 {
		return nil, fmt.Errorf("header size %d exceeds addressable range", n)
	}

	// The declared size is untrusted; grow the buffer with the bytes that
	// actually arrive instead of preallocating n.
	var b bytes.Buffer
	if _, err := io.CopyN(&b, r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("header truncated: declared %d bytes, got %d", n, b.Len())
		}
		return nil, err
	}

	return parseHeader(b.Bytes())
}

// parseHeader walks the top-level object with a token decoder so tensor
// order matches the document. A plain map would lose it.
func parseHeader(data []byte) (*Header, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("malformed header: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("malformed header: expected object, got %v", tok)
	}

	var h Header
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed header: %w", err)
		}
		name := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("malformed header: %w", err)
		}

		if name == MetadataKey {
			h.Metadata = raw
			continue
		}

		t, err := parseTensor(name, raw)
		if err != nil {
			return nil, err
		}
		h.Tensors = append(h.Tensors, t)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("malformed header: %w", err)
	}

	return &h, nil
}

func parseTensor(name string, raw json.RawMessage) (Tensor, error) {
	var v struct {
		DataType *string  `json:"dtype"`
		Shape    *[]int64 `json:"shape"`
		Offsets  []int64  `json:"data_offsets"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Tensor{}, fmt.Errorf("invalid tensor descriptor %q: %w", name, err)
	}
	if v.DataType == nil {
		return Tensor{}, fmt.Errorf("invalid tensor descriptor %q: missing dtype", name)
	}
	if v.Shape == nil {
		return Tensor{}, fmt.Errorf("invalid tensor descriptor %q: missing shape", name)
	}
	for _, dim := range *v.Shape {
		if dim < 0 {
			return Tensor{}, fmt.Errorf("invalid shape for %q: negative dimension %d", name, dim)
		}
	}

	return Tensor{
		Name:     name,
		DataType: *v.DataType,
		Shape:    Shape(*v.Shape),
		Offsets:  v.Offsets,
	}, nil
}
