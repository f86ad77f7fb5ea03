package safetensors

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, header string, payload []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model.safetensors")
	require.NoError(t, os.WriteFile(path, encodeFile(t, header, payload), 0o644))
	return path
}

func TestOpen(t *testing.T) {
	header := `{"a": {"dtype": "U8", "shape": [4], "data_offsets": [0, 4]}}`
	path := writeFile(t, header, []byte{1, 2, 3, 4})

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, uint64(len(header)), f.HeaderSize)
	assert.Equal(t, int64(8+len(header)+4), f.Size())
	require.Len(t, f.Header.Tensors, 1)
	assert.Equal(t, int64(4), f.TensorSize(f.Header.Tensors[0]))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.safetensors"))
	assert.Error(t, err)
}

func TestOpenTooShort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.safetensors")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestTensorReader(t *testing.T) {
	header := `{
		"a": {"dtype": "U8", "shape": [2], "data_offsets": [0, 2]},
		"b": {"dtype": "U8", "shape": [3], "data_offsets": [2, 5]}
	}`
	path := writeFile(t, header, []byte{10, 11, 20, 21, 22})

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := f.TensorReader(f.Header.Tensors[1])
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{20, 21, 22}, got)
}

func TestValidateOffsets(t *testing.T) {
	header := `{
		"ok": {"dtype": "U8", "shape": [2], "data_offsets": [0, 2]},
		"beyond": {"dtype": "U8", "shape": [2], "data_offsets": [0, 100]},
		"reversed": {"dtype": "U8", "shape": [2], "data_offsets": [2, 0]},
		"none": {"dtype": "U8", "shape": [2]}
	}`
	path := writeFile(t, header, []byte{1, 2})

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	byName := make(map[string]Tensor)
	for _, tensor := range f.Header.Tensors {
		byName[tensor.Name] = tensor
	}

	assert.NoError(t, f.ValidateOffsets(byName["ok"]))
	assert.ErrorContains(t, f.ValidateOffsets(byName["beyond"]), "bad data offsets")
	assert.ErrorContains(t, f.ValidateOffsets(byName["reversed"]), "bad data offsets")
	assert.ErrorContains(t, f.ValidateOffsets(byName["none"]), "no data offsets")

	assert.Zero(t, f.TensorSize(byName["none"]))
}
