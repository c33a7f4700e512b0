package tensor

import "fmt"

// Reshape returns a tensor with newShape sharing the receiver's data
// order: the flat buffer is copied verbatim, no elements move. The total
// element count must match.
func Reshape(t *Tensor, newShape Shape) *Tensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: reshape: %v", err))
	}
	if newShape.NumElements() != t.Size() {
		panic(fmt.Sprintf("tensor: cannot reshape %d elements into shape %v (%d elements)",
			t.Size(), newShape, newShape.NumElements()))
	}
	out := MustNew(newShape)
	copy(out.data, t.data)
	return out
}

// Transpose returns a tensor whose axes are permuted according to perm,
// which must contain each index in 0..rank-1 exactly once. Data is
// physically reordered so the result has standard contiguous strides for
// its permuted shape.
func Transpose(t *Tensor, perm []int) *Tensor {
	rank := t.Rank()
	if len(perm) != rank {
		panic(fmt.Sprintf("tensor: transpose permutation has length %d, want %d", len(perm), rank))
	}
	seen := make([]bool, rank)
	for _, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			panic(fmt.Sprintf("tensor: invalid permutation %v for rank %d", perm, rank))
		}
		seen[p] = true
	}

	outShape := make(Shape, rank)
	for i, p := range perm {
		outShape[i] = t.shape[p]
	}
	out := MustNew(outShape)

	coords := make([]int, rank)
	outCoords := make([]int, rank)
	for flat := 0; flat < t.Size(); flat++ {
		rem := flat
		for i := 0; i < rank; i++ {
			coords[i] = rem / t.strides[i]
			rem %= t.strides[i]
		}
		for i, p := range perm {
			outCoords[i] = coords[p]
		}
		outIdx := 0
		for i := 0; i < rank; i++ {
			outIdx += outCoords[i] * out.strides[i]
		}
		out.data[outIdx] = t.data[flat]
	}
	return out
}

// ExpandDims returns a tensor with a size-1 dimension inserted at axis
// (0 <= axis <= rank). Data order is unchanged.
func ExpandDims(t *Tensor, axis int) *Tensor {
	rank := t.Rank()
	if axis < 0 || axis > rank {
		panic(fmt.Sprintf("tensor: expand axis %d out of range [0, %d]", axis, rank))
	}
	newShape := make(Shape, 0, rank+1)
	newShape = append(newShape, t.shape[:axis]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, t.shape[axis:]...)
	return Reshape(t, newShape)
}

// Add returns the elementwise sum of a and b, which must have exactly
// equal shapes. There is no broadcasting.
func Add(a, b *Tensor) *Tensor {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor: add shape mismatch: %v vs %v", a.shape, b.shape))
	}
	out := MustNew(a.shape)
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Flatten returns a copy of the tensor's data as a flat slice in
// row-major order, independent of shape.
func Flatten(t *Tensor) []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}
