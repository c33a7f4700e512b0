// Package layer implements trainable and structural network layers with
// manually derived backward passes.
package layer

import (
	"fmt"

	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Layer is one stage of a network. Forward caches whatever state the
// matching Backward needs, so a layer instance is not safe for
// concurrent or interleaved passes. Backward accumulates parameter
// gradients; Update applies them through the optimizer and resets the
// accumulators.
type Layer interface {
	// Forward computes the layer's output for x.
	Forward(x *tensor.Tensor) *tensor.Tensor

	// Backward consumes the gradient of the loss with respect to the
	// layer's output and returns the gradient with respect to its input.
	// It must be called after Forward.
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Update applies accumulated gradients with the given rule and
	// zeroes the accumulators. A no-op for parameterless layers.
	Update(rule opt.Optimizer)

	// InputShape returns the shape Forward expects.
	InputShape() tensor.Shape

	// OutputShape returns the shape Forward produces.
	OutputShape() tensor.Shape

	// ConnectTo verifies this layer's output feeds next's input.
	ConnectTo(next Layer) error

	// Name identifies the layer type for summaries.
	Name() string

	// Params returns the number of trainable parameters.
	Params() int
}

// shapes carries the fixed input/output shapes shared by all layer
// types and implements the shape-related half of Layer.
type shapes struct {
	in, out tensor.Shape
}

func (s *shapes) InputShape() tensor.Shape  { return s.in }
func (s *shapes) OutputShape() tensor.Shape { return s.out }

func (s *shapes) ConnectTo(next Layer) error {
	if !s.out.Equal(next.InputShape()) {
		return fmt.Errorf("output shape %v does not match next layer's input shape %v",
			s.out, next.InputShape())
	}
	return nil
}

// checkInput panics unless x has the expected shape. Forward and
// Backward treat shape violations as programmer errors.
func checkInput(name string, x *tensor.Tensor, want tensor.Shape) {
	if !x.Shape().Equal(want) {
		panic(fmt.Sprintf("layer: %s: input shape %v, want %v", name, x.Shape(), want))
	}
}
