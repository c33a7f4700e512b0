// Package activations provides elementwise activation functions with
// their derivatives for backpropagation.
package activations

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// Linear is the identity activation.
type Linear struct{}

// Activate returns x unchanged.
func (l Linear) Activate(x float64) float64 { return x }

// Derivative returns 1.
func (l Linear) Derivative(x float64) float64 { return 1 }

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if x > 0, else 0
func (r ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// LeakyReLU activation function to prevent dying neurons.
type LeakyReLU struct {
	Alpha float64 // Slope for x <= 0
}

// NewLeakyReLU creates a LeakyReLU with the given alpha value.
func NewLeakyReLU(alpha float64) *LeakyReLU {
	return &LeakyReLU{Alpha: alpha}
}

// Activate computes x if x > 0, else alpha*x
func (l *LeakyReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return l.Alpha * x
}

// Derivative returns 1 if x > 0, else alpha
func (l *LeakyReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return l.Alpha
}

// Sigmoid activation function.
type Sigmoid struct{}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes sigmoid(x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (s Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (t Tanh) Derivative(x float64) float64 {
	tanhX := math.Tanh(x)
	return 1 - tanhX*tanhX
}

// Softmax normalizes a vector into a probability distribution. It is a
// whole-vector transform: the elementwise Activation methods panic, use
// ActivateVector instead. A dense layer configured with Softmax as its
// output head takes the vector path automatically.
type Softmax struct{}

// Activate panics; softmax is not an elementwise function.
func (s Softmax) Activate(x float64) float64 {
	panic("activations: Softmax.Activate: use ActivateVector for Softmax")
}

// Derivative panics; the softmax Jacobian is handled by the dense layer.
func (s Softmax) Derivative(x float64) float64 {
	panic("activations: Softmax.Derivative: use ActivateVector for Softmax")
}

// ActivateVector computes softmax(x) into out (out and x may alias).
// The maximum is subtracted before exponentiating so inputs of any
// magnitude stay finite.
func (s Softmax) ActivateVector(out, x []float64) {
	if len(out) != len(x) {
		panic("activations: Softmax.ActivateVector: length mismatch")
	}
	maxVal := floats.Max(x)
	for i, v := range x {
		out[i] = math.Exp(v - maxVal)
	}
	sum := floats.Sum(out)
	for i := range out {
		out[i] /= sum
	}
}
