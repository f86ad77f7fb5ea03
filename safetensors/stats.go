package safetensors

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Stats summarizes the payload values of a single tensor.
type Stats struct {
	Min  float32
	Max  float32
	Mean float64
	Std  float64
}

// TensorStats reads and decodes the payload of t and summarizes its values.
// Only F32, F16 and BF16 payloads can be decoded; other dtypes return an
// error the caller can treat as a skip.
func (f *File) TensorStats(t Tensor) (Stats, error) {
	r, err := f.TensorReader(t)
	if err != nil {
		return Stats{}, err
	}

	size := f.TensorSize(t)

	var f32s []float32
	switch t.DataType {
	case "F32":
		f32s = make([]float32, size/4)
		if err := binary.Read(r, binary.LittleEndian, f32s); err != nil {
			return Stats{}, err
		}
	case "F16":
		u16s := make([]uint16, size/2)
		if err := binary.Read(r, binary.LittleEndian, u16s); err != nil {
			return Stats{}, err
		}

		f32s = make([]float32, len(u16s))
		for i := range u16s {
			f32s[i] = float16.Frombits(u16s[i]).Float32()
		}
	case "BF16":
		u8s := make([]uint8, size)
		if err := binary.Read(r, binary.LittleEndian, u8s); err != nil {
			return Stats{}, err
		}

		f32s = bfloat16.DecodeFloat32(u8s)
	default:
		return Stats{}, fmt.Errorf("unknown data type: %s", t.DataType)
	}

	return summarize(f32s), nil
}

func summarize(f32s []float32) Stats {
	if len(f32s) == 0 {
		return Stats{}
	}

	s := Stats{Min: f32s[0], Max: f32s[0]}

	var sum float64
	for _, v := range f32s {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += float64(v)
	}
	s.Mean = sum / float64(len(f32s))

	var sq float64
	for _, v := range f32s {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(f32s)))

	return s
}
