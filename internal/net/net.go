// Package net assembles layers into a trainable feed-forward network.
package net

import (
	"fmt"

	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/loss"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Network is an ordered stack of layers trained sample by sample with
// backpropagation. Layers are validated as they are added: each layer's
// input shape must equal the previous layer's output shape. Compile
// attaches the loss and optimizer before training.
type Network struct {
	layers    []layer.Layer
	lossFn    loss.Loss
	optimizer opt.Optimizer
}

// New creates an empty network.
func New() *Network {
	return &Network{}
}

// Add appends l to the stack, checking shape compatibility with the
// previously added layer.
func (n *Network) Add(l layer.Layer) error {
	if l == nil {
		return fmt.Errorf("net: cannot add nil layer")
	}
	if len(n.layers) > 0 {
		prev := n.layers[len(n.layers)-1]
		if err := prev.ConnectTo(l); err != nil {
			return fmt.Errorf("net: layer %d (%s) -> %d (%s): %w",
				len(n.layers)-1, prev.Name(), len(n.layers), l.Name(), err)
		}
	}
	n.layers = append(n.layers, l)
	return nil
}

// Layers returns the layer stack. The caller must not modify it.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// InputShape returns the first layer's input shape.
func (n *Network) InputShape() tensor.Shape {
	if len(n.layers) == 0 {
		return nil
	}
	return n.layers[0].InputShape()
}

// OutputShape returns the last layer's output shape.
func (n *Network) OutputShape() tensor.Shape {
	if len(n.layers) == 0 {
		return nil
	}
	return n.layers[len(n.layers)-1].OutputShape()
}

// Forward runs x through every layer and returns the final output.
// Shape violations panic inside the offending layer.
func (n *Network) Forward(x *tensor.Tensor) *tensor.Tensor {
	out := x
	for _, l := range n.layers {
		out = l.Forward(out)
	}
	return out
}

// Train runs one training step on a single sample: forward pass, loss,
// backward pass and parameter update. It returns the pre-update loss.
func (n *Network) Train(x, y *tensor.Tensor) (float64, error) {
	if n.lossFn == nil || n.optimizer == nil {
		return 0, fmt.Errorf("net: network is not compiled")
	}
	if !x.Shape().Equal(n.InputShape()) {
		return 0, fmt.Errorf("net: input shape %v, want %v", x.Shape(), n.InputShape())
	}
	if !y.Shape().Equal(n.OutputShape()) {
		return 0, fmt.Errorf("net: target shape %v, want %v", y.Shape(), n.OutputShape())
	}

	pred := n.Forward(x)
	lossVal := n.lossFn.Forward(pred, y)

	grad := n.lossFn.Backward(pred, y)
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
	for _, l := range n.layers {
		l.Update(n.optimizer)
	}
	return lossVal, nil
}

// Fit trains on the full sample set for the given number of epochs and
// returns the mean loss of the final epoch. Callbacks observe epoch
// boundaries and may stop training early.
func (n *Network) Fit(inputs, targets []*tensor.Tensor, epochs int, callbacks ...Callback) (float64, error) {
	if n.lossFn == nil || n.optimizer == nil {
		return 0, fmt.Errorf("net: network is not compiled")
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("net: training set is empty")
	}
	if len(inputs) != len(targets) {
		return 0, fmt.Errorf("net: %d inputs but %d targets", len(inputs), len(targets))
	}
	if epochs <= 0 {
		return 0, fmt.Errorf("net: epochs must be positive, got %d", epochs)
	}

	for _, cb := range callbacks {
		cb.OnTrainBegin(n)
	}

	meanLoss := 0.0
	for epoch := 0; epoch < epochs; epoch++ {
		total := 0.0
		for i := range inputs {
			l, err := n.Train(inputs[i], targets[i])
			if err != nil {
				return 0, fmt.Errorf("net: epoch %d sample %d: %w", epoch, i, err)
			}
			total += l
		}
		meanLoss = total / float64(len(inputs))

		stop := false
		for _, cb := range callbacks {
			cb.OnEpochEnd(n, epoch, meanLoss)
			if cb.ShouldStop() {
				stop = true
			}
		}
		if stop {
			break
		}
	}

	for _, cb := range callbacks {
		cb.OnTrainEnd(n)
	}
	return meanLoss, nil
}

