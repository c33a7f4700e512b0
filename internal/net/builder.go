package net

import (
	"fmt"

	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Architecture describes a sequential dense network as supplied by an
// external provider: consecutive layer sizes plus optional weight and
// bias tensors keyed by layer index. Supplied tensors must match the
// exact parameter shapes the sizes imply; mismatches are rejected, not
// coerced.
type Architecture struct {
	Sizes   []int
	Hidden  activations.Activation
	Output  activations.Activation
	Weights map[int]*tensor.Tensor
	Biases  map[int]*tensor.Tensor
}

// Build constructs the network the architecture describes.
func (a Architecture) Build(init *layer.Init) (*Network, error) {
	n, err := BuildMLP(a.Sizes, a.Hidden, a.Output, init)
	if err != nil {
		return nil, err
	}
	for i, w := range a.Weights {
		d, err := n.DenseAt(i)
		if err != nil {
			return nil, err
		}
		if err := d.SetWeights(w); err != nil {
			return nil, fmt.Errorf("net: layer %d: %w", i, err)
		}
	}
	for i, b := range a.Biases {
		d, err := n.DenseAt(i)
		if err != nil {
			return nil, err
		}
		if err := d.SetBias(b); err != nil {
			return nil, fmt.Errorf("net: layer %d: %w", i, err)
		}
	}
	return n, nil
}

// BuildMLP builds a fully connected network from consecutive layer
// sizes: sizes[0] is the input width and each following entry adds a
// dense layer. Hidden layers use hidden; the last layer uses output.
// At least two sizes are required.
func BuildMLP(sizes []int, hidden, output activations.Activation, init *layer.Init) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("net: mlp needs at least 2 sizes, got %d", len(sizes))
	}
	n := New()
	for i := 1; i < len(sizes); i++ {
		act := hidden
		if i == len(sizes)-1 {
			act = output
		}
		d, err := layer.NewDense(sizes[i-1], sizes[i], act, init)
		if err != nil {
			return nil, fmt.Errorf("net: layer %d: %w", i-1, err)
		}
		if err := n.Add(d); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// DenseAt returns the i-th layer as a *layer.Dense, or an error if the
// index is out of range or the layer is not dense.
func (n *Network) DenseAt(i int) (*layer.Dense, error) {
	if i < 0 || i >= len(n.layers) {
		return nil, fmt.Errorf("net: layer index %d out of range [0, %d)", i, len(n.layers))
	}
	d, ok := n.layers[i].(*layer.Dense)
	if !ok {
		return nil, fmt.Errorf("net: layer %d is %s, not Dense", i, n.layers[i].Name())
	}
	return d, nil
}

// SetDenseParams replaces the weights and bias of the i-th layer, which
// must be dense. Shapes are validated against the layer's dimensions.
func (n *Network) SetDenseParams(i int, weights, bias *tensor.Tensor) error {
	d, err := n.DenseAt(i)
	if err != nil {
		return err
	}
	if err := d.SetWeights(weights); err != nil {
		return fmt.Errorf("net: layer %d: %w", i, err)
	}
	if err := d.SetBias(bias); err != nil {
		return fmt.Errorf("net: layer %d: %w", i, err)
	}
	return nil
}
