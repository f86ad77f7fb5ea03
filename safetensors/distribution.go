package safetensors

// Bucket is a running element-count total for one dtype label.
type Bucket struct {
	DataType string
	Elements int64
}

// Distribution buckets element counts by dtype. Buckets keep the order the
// dtype was first seen, which follows header document order when built by
// Distribute.
type Distribution struct {
	buckets []Bucket
	index   map[string]int
	total   int64
}

// Distribute folds the header's tensors into a per-dtype distribution.
func Distribute(h *Header) *Distribution {
	d := &Distribution{index: make(map[string]int)}
	for _, t := range h.Tensors {
		d.Add(t.DataType, t.Elements())
	}
	return d
}

// Add accumulates elements into the bucket for dtype, creating the bucket
// on first sight.
func (d *Distribution) Add(dtype string, elements int64) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	i, ok := d.index[dtype]
	if !ok {
		i = len(d.buckets)
		d.index[dtype] = i
		d.buckets = append(d.buckets, Bucket{DataType: dtype})
	}
	d.buckets[i].Elements += elements
	d.total += elements
}

// Buckets returns the per-dtype totals in first-seen order.
func (d *Distribution) Buckets() []Bucket {
	return d.buckets
}

// Total returns the grand total element count across all buckets.
func (d *Distribution) Total() int64 {
	return d.total
}

// Percent returns b's share of the grand total, in percent. It is zero
// when the distribution is empty so callers never divide by zero.
func (d *Distribution) Percent(b Bucket) float64 {
	if d.total == 0 {
		return 0
	}
	return float64(b.Elements) / float64(d.total) * 100
}
