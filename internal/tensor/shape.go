// Package tensor provides the N-dimensional array type underlying every
// data object exchanged between layers, plus the stateless numeric kernels
// (convolution, pooling, reshaping) used by the convolutional and pooling
// layers.
package tensor

import "fmt"

// MaxElements bounds the total element count of a single tensor. Creation
// with a larger shape fails instead of attempting a giant allocation.
const MaxElements = 1 << 28

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements for the shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape has rank >= 1, that every dimension is
// positive, and that the total element count stays below MaxElements.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape must have rank >= 1")
	}
	n := 1
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
		if dim > MaxElements/n {
			return fmt.Errorf("shape %v too large: element count exceeds %d", []int(s), MaxElements)
		}
		n *= dim
	}
	return nil
}

// Equal checks if two shapes are element-wise equal with the same rank.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape:
// stride[i] = product of all dimensions after i, so the last dimension
// is contiguous.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape like (2, 3, 4).
func (s Shape) String() string {
	out := "("
	for i, dim := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", dim)
	}
	return out + ")"
}
