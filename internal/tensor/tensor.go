package tensor

import "fmt"

// Tensor is a fixed-shape, mutable N-dimensional array backed by a flat
// row-major float64 buffer. A Tensor exclusively owns its buffer:
// constructors copy caller-supplied slices and Copy returns an
// independently-owned duplicate.
//
// Shape and strides never change after construction. Contents are mutated
// through Set, Fill and the Data accessor.
type Tensor struct {
	shape   Shape
	strides []int
	data    []float64
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]float64, shape.NumElements()),
	}, nil
}

// FromSlice creates a tensor with the given shape, copying data from the
// caller's slice. The slice length must match the shape's element count.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t := &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]float64, len(data)),
	}
	copy(t.data, data)
	return t, nil
}

// MustNew is like New but panics on an invalid shape. Intended for
// fixed-shape allocations whose validity is established by construction.
func MustNew(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape. The caller must not modify it.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	return len(t.data)
}

// Strides returns the row-major strides. The caller must not modify them.
func (t *Tensor) Strides() []int {
	return t.strides
}

// Data returns the backing flat buffer in row-major order. Mutating it
// mutates the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// offset converts a full coordinate tuple into a flat index.
// Panics if the number of coordinates differs from the rank or any
// coordinate is out of bounds.
func (t *Tensor) offset(coords []int) int {
	if len(coords) != len(t.shape) {
		panic(fmt.Sprintf("tensor: got %d coordinates for rank-%d tensor", len(coords), len(t.shape)))
	}
	idx := 0
	for i, c := range coords {
		if c < 0 || c >= t.shape[i] {
			panic(fmt.Sprintf("tensor: coordinate %d out of bounds for dimension %d (size %d)", c, i, t.shape[i]))
		}
		idx += c * t.strides[i]
	}
	return idx
}

// Get returns the element at the given full coordinate tuple.
func (t *Tensor) Get(coords ...int) float64 {
	return t.data[t.offset(coords)]
}

// Set stores v at the given full coordinate tuple.
func (t *Tensor) Set(v float64, coords ...int) {
	t.data[t.offset(coords)] = v
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float64) {
	for i := range t.data {
		t.data[i] = v
	}
}

// Zero sets every element to 0.
func (t *Tensor) Zero() {
	t.Fill(0)
}

// Map returns a new tensor with f applied elementwise. The receiver is
// not modified.
func (t *Tensor) Map(f func(float64) float64) *Tensor {
	out := &Tensor{
		shape:   t.shape.Clone(),
		strides: t.shape.ComputeStrides(),
		data:    make([]float64, len(t.data)),
	}
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// Copy returns a deep copy with an independently-owned buffer.
func (t *Tensor) Copy() *Tensor {
	out := &Tensor{
		shape:   t.shape.Clone(),
		strides: t.shape.ComputeStrides(),
		data:    make([]float64, len(t.data)),
	}
	copy(out.data, t.data)
	return out
}

// String formats a short description like Tensor(2, 3).
func (t *Tensor) String() string {
	return "Tensor" + t.shape.String()
}
