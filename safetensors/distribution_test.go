package safetensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributeSingleType(t *testing.T) {
	h, err := decode(t, `{
		"a": {"dtype": "F32", "shape": [2, 3]},
		"b": {"dtype": "F32", "shape": [4]}
	}`)
	require.NoError(t, err)

	d := Distribute(h)
	assert.Equal(t, int64(10), d.Total())

	buckets := d.Buckets()
	require.Len(t, buckets, 1)
	assert.Equal(t, Bucket{DataType: "F32", Elements: 10}, buckets[0])
	assert.InDelta(t, 100.0, d.Percent(buckets[0]), 1e-9)
}

func TestDistributeSkipsMetadata(t *testing.T) {
	h, err := decode(t, `{
		"a": {"dtype": "F32", "shape": [2]},
		"b": {"dtype": "I64", "shape": [2]},
		"__metadata__": {"format": "pt"}
	}`)
	require.NoError(t, err)

	d := Distribute(h)
	assert.Equal(t, int64(4), d.Total())

	buckets := d.Buckets()
	require.Len(t, buckets, 2)
	assert.Equal(t, Bucket{DataType: "F32", Elements: 2}, buckets[0])
	assert.Equal(t, Bucket{DataType: "I64", Elements: 2}, buckets[1])
	assert.InDelta(t, 50.0, d.Percent(buckets[0]), 1e-9)
	assert.InDelta(t, 50.0, d.Percent(buckets[1]), 1e-9)
}

func TestDistributeFirstSeenOrder(t *testing.T) {
	h, err := decode(t, `{
		"a": {"dtype": "I64", "shape": [1]},
		"b": {"dtype": "F32", "shape": [2]},
		"c": {"dtype": "I64", "shape": [3]},
		"d": {"dtype": "BF16", "shape": [4]}
	}`)
	require.NoError(t, err)

	var order []string
	d := Distribute(h)
	for _, b := range d.Buckets() {
		order = append(order, b.DataType)
	}
	assert.Equal(t, []string{"I64", "F32", "BF16"}, order)
	assert.Equal(t, int64(4), d.Buckets()[0].Elements)
}

func TestDistributeScalar(t *testing.T) {
	h, err := decode(t, `{"scale": {"dtype": "F32", "shape": []}}`)
	require.NoError(t, err)

	d := Distribute(h)
	assert.Equal(t, int64(1), d.Total())
}

func TestDistributeEmpty(t *testing.T) {
	h, err := decode(t, `{"__metadata__": {"format": "pt"}}`)
	require.NoError(t, err)

	d := Distribute(h)
	assert.Equal(t, int64(0), d.Total())
	assert.Empty(t, d.Buckets())
}

func TestDistributeZeroElements(t *testing.T) {
	h, err := decode(t, `{"empty": {"dtype": "F32", "shape": [0, 4]}}`)
	require.NoError(t, err)

	d := Distribute(h)
	assert.Equal(t, int64(0), d.Total())
	require.Len(t, d.Buckets(), 1)
	assert.Zero(t, d.Percent(d.Buckets()[0]))
}

func TestDistributionTotalMatchesBucketSum(t *testing.T) {
	h, err := decode(t, `{
		"a": {"dtype": "F32", "shape": [7, 11]},
		"b": {"dtype": "F16", "shape": [13]},
		"c": {"dtype": "F32", "shape": [3, 5, 2]},
		"d": {"dtype": "Q8_0", "shape": []}
	}`)
	require.NoError(t, err)

	d := Distribute(h)

	var sum int64
	var pct float64
	for _, b := range d.Buckets() {
		sum += b.Elements
		pct += d.Percent(b)
	}
	assert.Equal(t, d.Total(), sum)
	assert.InDelta(t, 100.0, pct, 1e-9)
}

func TestDistributionAddZeroValue(t *testing.T) {
	var d Distribution
	d.Add("F32", 3)
	d.Add("F32", 4)
	assert.Equal(t, int64(7), d.Total())
	require.Len(t, d.Buckets(), 1)
}
