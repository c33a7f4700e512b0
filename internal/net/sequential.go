package net

import (
	"fmt"
	"strings"

	"github.com/tensornet-go/tensornet/internal/loss"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Keras-style convenience surface over Network.

// Compile attaches the loss function and optimizer. The network must
// have at least one layer and the learning rate must be positive.
func (n *Network) Compile(lossFn loss.Loss, optimizer opt.Optimizer) error {
	if len(n.layers) == 0 {
		return fmt.Errorf("net: cannot compile an empty network")
	}
	if lossFn == nil {
		return fmt.Errorf("net: compile requires a loss function")
	}
	if optimizer == nil {
		return fmt.Errorf("net: compile requires an optimizer")
	}
	if optimizer.LearningRate() <= 0 {
		return fmt.Errorf("net: learning rate must be positive, got %g", optimizer.LearningRate())
	}
	n.lossFn = lossFn
	n.optimizer = optimizer
	return nil
}

// Predict validates the input shape and runs a forward pass.
func (n *Network) Predict(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("net: cannot predict with an empty network")
	}
	if !x.Shape().Equal(n.InputShape()) {
		return nil, fmt.Errorf("net: input shape %v, want %v", x.Shape(), n.InputShape())
	}
	return n.Forward(x), nil
}

// Evaluate returns the mean loss over the sample set without updating
// parameters.
func (n *Network) Evaluate(inputs, targets []*tensor.Tensor) (float64, error) {
	if n.lossFn == nil {
		return 0, fmt.Errorf("net: network is not compiled")
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("net: evaluation set is empty")
	}
	if len(inputs) != len(targets) {
		return 0, fmt.Errorf("net: %d inputs but %d targets", len(inputs), len(targets))
	}
	total := 0.0
	for i := range inputs {
		pred, err := n.Predict(inputs[i])
		if err != nil {
			return 0, fmt.Errorf("net: sample %d: %w", i, err)
		}
		total += n.lossFn.Forward(pred, targets[i])
	}
	return total / float64(len(inputs)), nil
}

// Summary returns a human-readable description of the layer stack.
func (n *Network) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Network: %d layers\n", len(n.layers))
	total := 0
	for i, l := range n.layers {
		fmt.Fprintf(&b, "  %d: %-10s %v -> %v params=%d\n",
			i, l.Name(), l.InputShape(), l.OutputShape(), l.Params())
		total += l.Params()
	}
	fmt.Fprintf(&b, "Total params: %d", total)
	return b.String()
}