package layer

import (
	"fmt"

	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Flatten reshapes any input to a rank-1 tensor, bridging spatial
// layers to dense ones. Backward reshapes the gradient back to the
// input shape.
type Flatten struct {
	shapes
}

// NewFlatten creates a flatten layer for inputs of the given shape.
func NewFlatten(inputShape tensor.Shape) (*Flatten, error) {
	if err := inputShape.Validate(); err != nil {
		return nil, fmt.Errorf("flatten input shape: %w", err)
	}
	return &Flatten{
		shapes: shapes{in: inputShape.Clone(), out: tensor.Shape{inputShape.NumElements()}},
	}, nil
}

// Forward reshapes x to rank 1.
func (f *Flatten) Forward(x *tensor.Tensor) *tensor.Tensor {
	checkInput(f.Name(), x, f.in)
	return tensor.Reshape(x, f.out)
}

// Backward reshapes the gradient back to the input shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	checkInput(f.Name(), grad, f.out)
	return tensor.Reshape(grad, f.in)
}

// Update is a no-op; flatten has no parameters.
func (f *Flatten) Update(rule opt.Optimizer) {}

// Name identifies the layer type.
func (f *Flatten) Name() string { return "Flatten" }

// Params returns 0.
func (f *Flatten) Params() int { return 0 }
