package safetensors

import (
	"fmt"
	"io"
	"os"
)

// File is an open safetensors file with its header decoded. The payload
// region starts at 8+HeaderSize and is read on demand via TensorReader.
type File struct {
	Path       string
	HeaderSize uint64
	Header     *Header

	f    *os.File
	size int64
}

// Open opens path and decodes its header. The caller must Close the file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	finfo, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	n, err := ReadHeaderSize(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	h, err := DecodeHeader(f, n)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &File{
		Path:       path,
		HeaderSize: n,
		Header:     h,
		f:          f,
		size:       finfo.Size(),
	}, nil
}

func (f *File) Close() error {
	return f.f.Close()
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	return f.size
}

// TensorSize returns the payload byte length of t, or 0 when the header
// declares no offsets for it.
func (f *File) TensorSize(t Tensor) int64 {
	if len(t.Offsets) != 2 {
		return 0
	}
	return t.Offsets[1] - t.Offsets[0]
}

// ValidateOffsets checks that t's declared data_offsets fall inside the
// payload region of the file.
func (f *File) ValidateOffsets(t Tensor) error {
	if len(t.Offsets) != 2 {
		return fmt.Errorf("no data offsets for %q", t.Name)
	}

	dataStart := int64(8 + f.HeaderSize)
	begin := dataStart + t.Offsets[0]
	end := dataStart + t.Offsets[1]
	if err := checkBeginEnd(f.size, begin, end); err != nil {
		return fmt.Errorf("bad data offsets for %q: %w", t.Name, err)
	}
	return nil
}

// TensorReader returns a reader over the payload bytes of t. The reader
// shares the file handle and is only valid until Close.
func (f *File) TensorReader(t Tensor) (io.Reader, error) {
	if err := f.ValidateOffsets(t); err != nil {
		return nil, err
	}

	dataStart := int64(8 + f.HeaderSize)
	return io.NewSectionReader(f.f, dataStart+t.Offsets[0], t.Offsets[1]-t.Offsets[0]), nil
}

func checkBeginEnd(size, begin, end int64) error {
	if begin < 0 {
		return fmt.Errorf("begin must not be negative: %d", begin)
	}
	if end < begin {
		return fmt.Errorf("end must be >= begin: %d < %d", end, begin)
	}
	if end > size {
		return fmt.Errorf("end must be <= size: %d > %d", end, size)
	}
	return nil
}
